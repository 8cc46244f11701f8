package deptadmin

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Fallback notices used when the remote side gives no message of its own.
const (
	MsgListFailed   = "failed to load departments"
	MsgCreateFailed = "failed to add department"
	MsgUpdateFailed = "failed to update department"
	MsgDeleteFailed = "failed to delete department"

	MsgConfirmDelete = "Are you sure you want to delete this department?"
)

// DefaultLocale is used when the configuration names none.
const DefaultLocale = "en"

// french holds the translations for the original French admin UI. English
// strings are the keys themselves.
var french = map[string]string{
	MsgNameRequired:  "Le nom du département est obligatoire.",
	MsgNameDigits:    "Le nom du département ne doit pas contenir de chiffres.",
	MsgCodeRequired:  "Le code du département est obligatoire.",
	MsgListFailed:    "Erreur lors du chargement des départements",
	MsgCreateFailed:  "Erreur lors de l'ajout du département",
	MsgUpdateFailed:  "Erreur lors de la mise à jour du département",
	MsgDeleteFailed:  "Erreur lors de la suppression du département",
	MsgConfirmDelete: "Êtes-vous sûr de vouloir supprimer ce département ?",

	"Manage departments":                "Gérer les départements",
	"Departments":                       "Départements",
	"Department list":                   "Liste des départements",
	"Add department":                    "Ajouter un département",
	"Edit department":                   "Modifier un département",
	"Delete department":                 "Supprimer un département",
	"Search by department name...":      "Rechercher par nom du département...",
	"Search":                            "Rechercher",
	"Reload":                            "Recharger",
	"Department name":                   "Nom du département",
	"Department code":                   "Code du département",
	"Actions":                           "Actions",
	"Edit":                              "Modifier",
	"Delete":                            "Supprimer",
	"Close":                             "Fermer",
	"Cancel":                            "Annuler",
	"Add":                               "Ajouter",
	"Adding...":                         "Ajout en cours...",
	"Update":                            "Mettre à jour",
	"Updating...":                       "Mise à jour...",
	"No departments found":              "Aucun département trouvé",
	"No department matches your search": "Aucun département ne correspond à votre recherche",
	"Loading...":                        "Chargement...",
}

func init() {
	for key, msg := range french {
		if err := message.SetString(language.French, key, msg); err != nil {
			panic(fmt.Sprintf("register french message %q: %s", key, err))
		}
	}
}

// NewPrinter returns a printer for locale, falling back to English for
// unknown or malformed locales.
func NewPrinter(locale string) *message.Printer {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return message.NewPrinter(tag)
}

// Translate returns the message for key in the printer's language, or key
// itself when there is no translation. Keys are never treated as format
// strings, so text containing % comes back unchanged.
func Translate(p *message.Printer, key string) string {
	if p == nil {
		return key
	}
	return p.Sprintf(strings.ReplaceAll(key, "%", "%%"))
}
