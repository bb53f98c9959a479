package view

import (
	"strings"

	"github.com/sells-group/importer-intel/internal/model"
)

// NoContactNote is shown when no structured contact value survives.
const NoContactNote = "Contact details are not publicly listed. You can try to inquire using the 'Contact Importer' form below."

// ContactView is the contact section. Text is set for a free-text contact;
// otherwise the four fields hold only real values and Note is set when all
// four are blank.
type ContactView struct {
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Website string `json:"website,omitempty"`
	Address string `json:"address,omitempty"`
	Text    string `json:"text,omitempty"`
	Note    string `json:"note,omitempty"`
}

// Contact filters placeholder values out of the contact block.
func Contact(c model.Contact) ContactView {
	if c.Info == nil {
		return ContactView{Text: c.Text}
	}
	v := ContactView{
		Phone:   available(c.Info.Phone),
		Email:   available(c.Info.Email),
		Website: available(c.Info.Website),
		Address: available(c.Info.Address),
	}
	if v.Phone == "" && v.Email == "" && v.Website == "" && v.Address == "" {
		v.Note = NoContactNote
	}
	return v
}

// available drops "N/A" and "not publicly available" (any case).
func available(s string) string {
	if s == "N/A" || strings.EqualFold(s, "not publicly available") {
		return ""
	}
	return s
}
