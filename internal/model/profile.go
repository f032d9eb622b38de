package model

import "time"

// Profile is the per-user professional record. There is at most one per user;
// UserID is the owning reference and is never taken from request input.
//
// Experience and Education are stored inside the profile document and are
// ordered most recent first: new entries go to index 0.
type Profile struct {
	ID             string       `json:"id"`
	UserID         string       `json:"-"`
	User           *UserRef     `json:"user,omitempty"`
	Company        string       `json:"company,omitempty"`
	Website        string       `json:"website,omitempty"`
	Location       string       `json:"location,omitempty"`
	Bio            string       `json:"bio,omitempty"`
	Status         string       `json:"status"`
	Skills         []string     `json:"skills"`
	GitHubUsername string       `json:"githubusername,omitempty"`
	Social         Social       `json:"social"`
	Experience     []Experience `json:"experience"`
	Education      []Education  `json:"education"`
	CreatedAt      time.Time    `json:"date"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

type Social struct {
	YouTube   string `json:"youtube,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"`
	Instagram string `json:"instagram,omitempty"`
}

type Experience struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Company     string     `json:"company"`
	Location    string     `json:"location,omitempty"`
	From        time.Time  `json:"from"`
	To          *time.Time `json:"to,omitempty"`
	Current     bool       `json:"current"`
	Description string     `json:"description,omitempty"`
}

type Education struct {
	ID           string     `json:"id"`
	School       string     `json:"school"`
	Degree       string     `json:"degree"`
	FieldOfStudy string     `json:"fieldofstudy"`
	From         time.Time  `json:"from"`
	To           *time.Time `json:"to,omitempty"`
	Current      bool       `json:"current"`
	Description  string     `json:"description,omitempty"`
}

// ProfileUpdate is a sparse patch: only the fields with Set=true are written.
// Social links are patched one by one, so supplying "twitter" leaves an
// existing "youtube" alone.
type ProfileUpdate struct {
	Company        Optional[string]
	Website        Optional[string]
	Location       Optional[string]
	Bio            Optional[string]
	Status         Optional[string]
	GitHubUsername Optional[string]
	Skills         Optional[[]string]
	YouTube        Optional[string]
	Twitter        Optional[string]
	Facebook       Optional[string]
	LinkedIn       Optional[string]
	Instagram      Optional[string]
}

// ApplyTo merges the supplied fields into p.
func (u ProfileUpdate) ApplyTo(p *Profile) {
	u.Company.Apply(&p.Company)
	u.Website.Apply(&p.Website)
	u.Location.Apply(&p.Location)
	u.Bio.Apply(&p.Bio)
	u.Status.Apply(&p.Status)
	u.GitHubUsername.Apply(&p.GitHubUsername)
	u.Skills.Apply(&p.Skills)
	u.YouTube.Apply(&p.Social.YouTube)
	u.Twitter.Apply(&p.Social.Twitter)
	u.Facebook.Apply(&p.Social.Facebook)
	u.LinkedIn.Apply(&p.Social.LinkedIn)
	u.Instagram.Apply(&p.Social.Instagram)
}

// IndexOfExperience returns the position of the entry with the given id, or -1.
func (p *Profile) IndexOfExperience(id string) int {
	for i, e := range p.Experience {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// IndexOfEducation returns the position of the entry with the given id, or -1.
func (p *Profile) IndexOfEducation(id string) int {
	for i, e := range p.Education {
		if e.ID == id {
			return i
		}
	}
	return -1
}
