package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"text/template"
)

//go:embed locales/*.json
var localesFS embed.FS

// message é uma entrada do catálogo; tmpl só existe quando o texto tem parâmetros
type message struct {
	text string
	tmpl *template.Template
}

type catalogue map[string]message

// Service resolve message IDs para textos traduzidos.
// Os catálogos são imutáveis depois do carregamento, então o Service
// pode ser compartilhado entre goroutines sem lock.
type Service struct {
	catalogues      map[string]catalogue
	languages       []string
	defaultLanguage string
}

// NewEmbeddedService carrega os locales embutidos no binário
func NewEmbeddedService(defaultLang string) (*Service, error) {
	sub, err := fs.Sub(localesFS, "locales")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded locales: %w", err)
	}
	return NewService(sub, defaultLang)
}

// NewService lê um <idioma>.json por idioma na raiz de fsys.
// Templates inválidos falham no carregamento, não na tradução.
func NewService(fsys fs.FS, defaultLang string) (*Service, error) {
	files, err := fs.Glob(fsys, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to find locale files: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no locale files found")
	}

	s := &Service{
		catalogues:      make(map[string]catalogue, len(files)),
		defaultLanguage: defaultLang,
	}

	for _, file := range files {
		lang := strings.TrimSuffix(path.Base(file), ".json")

		cat, err := loadCatalogue(fsys, file)
		if err != nil {
			return nil, err
		}
		s.catalogues[lang] = cat
		s.languages = append(s.languages, lang)
	}
	sort.Strings(s.languages)

	if _, ok := s.catalogues[defaultLang]; !ok {
		return nil, fmt.Errorf("default language %s not found in locale files", defaultLang)
	}

	return s, nil
}

func loadCatalogue(fsys fs.FS, file string) (catalogue, error) {
	data, err := fs.ReadFile(fsys, file)
	if err != nil {
		return nil, fmt.Errorf("failed to read locale file %s: %w", file, err)
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse locale file %s: %w", file, err)
	}

	cat := make(catalogue, len(raw))
	for key, text := range raw {
		msg := message{text: text}
		if strings.Contains(text, "{{") {
			tmpl, err := template.New(key).Parse(text)
			if err != nil {
				return nil, fmt.Errorf("invalid template for %s in %s: %w", key, file, err)
			}
			msg.tmpl = tmpl
		}
		cat[key] = msg
	}
	return cat, nil
}

// T traduz key para lang, caindo para o idioma padrão e, por fim, para a própria key.
// params[0] alimenta os placeholders ({{.Role}}, {{.Field}}...).
func (s *Service) T(lang, key string, params ...map[string]interface{}) string {
	msg, ok := s.lookup(lang, key)
	if !ok {
		return key
	}
	if msg.tmpl == nil || len(params) == 0 {
		return msg.text
	}

	var b strings.Builder
	if err := msg.tmpl.Execute(&b, params[0]); err != nil {
		return msg.text
	}
	return b.String()
}

func (s *Service) lookup(lang, key string) (message, bool) {
	if msg, ok := s.catalogues[lang][key]; ok {
		return msg, true
	}
	msg, ok := s.catalogues[s.defaultLanguage][key]
	return msg, ok
}

// Resolve encontra o idioma suportado para uma tag informada pelo cliente:
// match exato (sem diferenciar maiúsculas), depois o idioma base ("es-MX" -> "es")
// e por fim uma variante regional do mesmo idioma ("pt" -> "pt-BR").
func (s *Service) Resolve(tag string) (string, bool) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return "", false
	}

	for _, lang := range s.languages {
		if strings.EqualFold(lang, tag) {
			return lang, true
		}
	}

	base, _, _ := strings.Cut(tag, "-")
	for _, lang := range s.languages {
		if strings.EqualFold(lang, base) {
			return lang, true
		}
	}
	for _, lang := range s.languages {
		if langBase, _, found := strings.Cut(lang, "-"); found && strings.EqualFold(langBase, base) {
			return lang, true
		}
	}

	return "", false
}

// GetDefaultLanguage retorna o idioma padrão configurado
func (s *Service) GetDefaultLanguage() string {
	return s.defaultLanguage
}

// GetSupportedLanguages retorna os idiomas carregados, em ordem alfabética
func (s *Service) GetSupportedLanguages() []string {
	return append([]string(nil), s.languages...)
}

// IsLanguageSupported verifica se existe catálogo exatamente para lang
func (s *Service) IsLanguageSupported(lang string) bool {
	_, ok := s.catalogues[lang]
	return ok
}
