package model

import "time"

// Post is an authored entry in the feed. Name and Avatar are copied from the
// author when the post is written and are not refreshed afterwards.
type Post struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user"`
	Text      string    `json:"text"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar"`
	Likes     []Like    `json:"likes"`
	Comments  []Comment `json:"comments"`
	CreatedAt time.Time `json:"date"`
}

type Like struct {
	ID     string `json:"id"`
	UserID string `json:"user"`
}

type Comment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user"`
	Text      string    `json:"text"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"date"`
}

// LikedBy reports the index of userID's like, or -1.
func (p *Post) LikedBy(userID string) int {
	for i, l := range p.Likes {
		if l.UserID == userID {
			return i
		}
	}
	return -1
}

// IndexOfComment returns the position of the comment with the given id, or -1.
func (p *Post) IndexOfComment(id string) int {
	for i, c := range p.Comments {
		if c.ID == id {
			return i
		}
	}
	return -1
}
