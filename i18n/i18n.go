// Package i18n provides minimal fr/en translation of API message codes.
// French is the default language of the application.
package i18n

import "strings"

var translations = map[string]map[string]string{
	"fr": {
		"required":              "Requis",
		"must_be_positive":      "Doit être positif",
		"must_not_be_negative":  "Ne doit pas être négatif",
		"invalid_value":         "Valeur invalide",
		"out_of_range":          "Hors limites",
		"validation_failed":     "Validation échouée",
		"unauthorized":          "Non autorisé",
		"forbidden":             "Accès refusé",
		"not_found":             "Introuvable",
		"invalid_json":          "JSON invalide",
		"invalid_id":            "Identifiant invalide",
		"email_already_used":    "Adresse email déjà utilisée",
		"invalid_credentials":   "Identifiants invalides",
		"invalid_status":        "Statut de projet invalide",
		"product_create_failed": "Création du produit échouée",
		"kit_create_failed":     "Création du kit échouée",
		"project_create_failed": "Création du projet échouée",
		"pdf_generation_failed": "Génération du PDF échouée",
	},
	"en": {
		"required":              "Required",
		"must_be_positive":      "Must be positive",
		"must_not_be_negative":  "Must not be negative",
		"invalid_value":         "Invalid value",
		"out_of_range":          "Out of range",
		"validation_failed":     "Validation failed",
		"unauthorized":          "Unauthorized",
		"forbidden":             "Forbidden",
		"not_found":             "Not found",
		"invalid_json":          "Invalid JSON",
		"invalid_id":            "Invalid identifier",
		"email_already_used":    "Email address already in use",
		"invalid_credentials":   "Invalid credentials",
		"invalid_status":        "Invalid project status",
		"product_create_failed": "Product creation failed",
		"kit_create_failed":     "Kit creation failed",
		"project_create_failed": "Project creation failed",
		"pdf_generation_failed": "PDF generation failed",
	},
}

// T translates a message code. Unknown languages fall back to French; unknown
// codes fall back to the code itself.
func T(lang, code string) string {
	m, ok := translations[lang]
	if !ok {
		m = translations["fr"]
	}
	if msg, ok := m[code]; ok {
		return msg
	}
	if lang != "fr" {
		if msg, ok := translations["fr"][code]; ok {
			return msg
		}
	}
	return code
}

// DetectLanguage picks fr or en from an Accept-Language header, defaulting to fr.
func DetectLanguage(acceptLanguage string) string {
	for _, part := range strings.Split(acceptLanguage, ",") {
		tag := strings.ToLower(strings.TrimSpace(strings.SplitN(part, ";", 2)[0]))
		if strings.HasPrefix(tag, "en") {
			return "en"
		}
		if strings.HasPrefix(tag, "fr") {
			return "fr"
		}
	}
	return "fr"
}
