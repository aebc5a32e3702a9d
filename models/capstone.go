package models

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"gorm.io/datatypes"
)

const (
	MaxCapstoneAuthors = 10
	MinCapstoneYear    = 1900
	RepositoryName     = "CCS Research Repository"

	legacyAuthorPrefix  = "STUDENT_DATA:"
	legacyDisplayMarker = "|DISPLAY:"
	legacyAuthorSep     = "@@"
)

type CapstoneStatus string

const (
	CapstoneNonVerified CapstoneStatus = "nonverified"
	CapstoneVerified    CapstoneStatus = "verified"
	CapstoneRejected    CapstoneStatus = "rejected"
)

type Author struct {
	FirstName  string `json:"first_name" validate:"required"`
	MiddleName string `json:"middle_name,omitempty"`
	LastName   string `json:"last_name" validate:"required"`
	Suffix     string `json:"suffix,omitempty"`
}

func (a Author) FullName() string {
	return strings.Join(strings.Fields(a.FirstName+" "+a.MiddleName+" "+a.LastName+" "+a.Suffix), " ")
}

// APA renders "Last, F. M." with the suffix after the initials.
func (a Author) APA() string {
	var initials []string
	for _, name := range strings.Fields(a.FirstName + " " + a.MiddleName) {
		r := []rune(name)
		initials = append(initials, string(unicode.ToUpper(r[0]))+".")
	}
	out := strings.TrimSpace(a.LastName)
	if len(initials) > 0 {
		out += ", " + strings.Join(initials, " ")
	}
	if s := strings.TrimSpace(a.Suffix); s != "" {
		out += ", " + s
	}
	return out
}

// CapstoneSubmission is the final manuscript of a group. GroupKey is unique,
// so a second insert for the same group fails at the database too.
type CapstoneSubmission struct {
	ID          uint                        `json:"id" gorm:"primarykey"`
	GroupKey    string                      `json:"-" gorm:"size:80;uniqueIndex;not null"`
	OwnerID     uint                        `json:"owner_id" gorm:"index;not null"`
	LineageID   uint                        `json:"lineage_id" gorm:"index"`
	Title       string                      `json:"title" gorm:"not null"`
	Authors     datatypes.JSONSlice[Author] `json:"authors" gorm:"type:json"`
	Year        int                         `json:"year"`
	Abstract    string                      `json:"abstract" gorm:"type:text"`
	Keywords    string                      `json:"keywords"`
	DocumentRef string                      `json:"document_ref" gorm:"not null"`
	FileName    string                      `json:"file_name"`
	Status      CapstoneStatus              `json:"status" gorm:"size:16;index;default:'nonverified'"`
	VerifiedBy  *uint                       `json:"verified_by"`
	VerifiedAt  *time.Time                  `json:"verified_at"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
}

func (c CapstoneSubmission) GateStatus() GateStatus {
	switch c.Status {
	case CapstoneVerified:
		return GateApproved
	case CapstoneRejected:
		return GateRejected
	}
	return GatePending
}

func (c CapstoneSubmission) AuthorNames() string {
	names := make([]string, 0, len(c.Authors))
	for _, a := range c.Authors {
		names = append(names, a.FullName())
	}
	return strings.Join(names, ", ")
}

func (c CapstoneSubmission) Citation() string {
	formatted := make([]string, 0, len(c.Authors))
	for _, a := range c.Authors {
		formatted = append(formatted, a.APA())
	}
	var authors string
	switch len(formatted) {
	case 0:
		authors = "Unknown Author"
	case 1:
		authors = formatted[0]
	default:
		authors = strings.Join(formatted[:len(formatted)-1], ", ") + ", & " + formatted[len(formatted)-1]
	}
	return authors + " (" + strconv.Itoa(c.Year) + "). " + c.Title + ". " + RepositoryName + "."
}

// ParseLegacyAuthors reads author columns written by the previous system:
// either "STUDENT_DATA:f|m|l|s@@f|m|l|s|DISPLAY:names" or a comma separated
// list of display names.
func ParseLegacyAuthors(raw string) []Author {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if strings.HasPrefix(raw, legacyAuthorPrefix) {
		body := strings.TrimPrefix(raw, legacyAuthorPrefix)
		if i := strings.Index(body, legacyDisplayMarker); i >= 0 {
			body = body[:i]
		}
		var authors []Author
		for _, chunk := range strings.Split(body, legacyAuthorSep) {
			parts := strings.Split(chunk, "|")
			for len(parts) < 4 {
				parts = append(parts, "")
			}
			a := Author{
				FirstName:  strings.TrimSpace(parts[0]),
				MiddleName: strings.TrimSpace(parts[1]),
				LastName:   strings.TrimSpace(parts[2]),
				Suffix:     strings.TrimSpace(parts[3]),
			}
			if a.FirstName == "" && a.LastName == "" {
				continue
			}
			authors = append(authors, a)
		}
		return authors
	}

	var authors []Author
	for _, name := range strings.Split(raw, ",") {
		fields := strings.Fields(name)
		if len(fields) == 0 {
			continue
		}
		a := Author{LastName: fields[len(fields)-1]}
		if len(fields) > 1 {
			a.FirstName = fields[0]
			a.MiddleName = strings.Join(fields[1:len(fields)-1], " ")
		}
		authors = append(authors, a)
	}
	return authors
}
