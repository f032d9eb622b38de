// Package service holds the business rules of the application.
//
//	Handler (HTTP)     → decodes requests, writes responses
//	Service (business) → validates input, enforces ownership, orchestrates
//	Repository (data)  → reads and writes the database
//
// Services accept repository interfaces, never *sqlite.DB, so tests drive
// them with in-memory fakes. They return apperror values and leave the
// translation to HTTP status codes to the handler package.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/devconnector/internal/apperror"
	"github.com/sakif/devconnector/internal/model"
	"github.com/sakif/devconnector/internal/repository"
	"github.com/sakif/devconnector/internal/validate"
)

// ProfileInput is the body of POST /api/profile. Every field is optional on
// the wire; only the supplied ones are written. Skills arrive as one
// comma-separated string.
type ProfileInput struct {
	Company        model.Optional[string] `json:"company"`
	Website        model.Optional[string] `json:"website"`
	Location       model.Optional[string] `json:"location"`
	Bio            model.Optional[string] `json:"bio"`
	Status         model.Optional[string] `json:"status" validate:"required" msg:"Status is required"`
	GitHubUsername model.Optional[string] `json:"githubusername"`
	Skills         model.Optional[string] `json:"skills" validate:"required" msg:"Skills is required"`
	YouTube        model.Optional[string] `json:"youtube"`
	Twitter        model.Optional[string] `json:"twitter"`
	Facebook       model.Optional[string] `json:"facebook"`
	LinkedIn       model.Optional[string] `json:"linkedin"`
	Instagram      model.Optional[string] `json:"instagram"`
}

// ExperienceInput is the body of PUT /api/profile/experience.
type ExperienceInput struct {
	Title       string `json:"title" validate:"required" msg:"Title is required"`
	Company     string `json:"company" validate:"required" msg:"Company is required"`
	Location    string `json:"location"`
	From        string `json:"from" validate:"required" msg:"From date is required"`
	To          string `json:"to"`
	Current     bool   `json:"current"`
	Description string `json:"description"`
}

// EducationInput is the body of PUT /api/profile/education.
type EducationInput struct {
	School       string `json:"school" validate:"required" msg:"School is required"`
	Degree       string `json:"degree" validate:"required" msg:"Degree is required"`
	FieldOfStudy string `json:"fieldofstudy" validate:"required" msg:"Field of study is required"`
	From         string `json:"from" validate:"required" msg:"From date is required"`
	To           string `json:"to"`
	Current      bool   `json:"current"`
	Description  string `json:"description"`
}

// ProfileService manages the caller's profile and its experience and
// education lists.
type ProfileService struct {
	profiles repository.ProfileRepository
	accounts repository.AccountRepository
	logger   *slog.Logger
}

func NewProfileService(
	profiles repository.ProfileRepository,
	accounts repository.AccountRepository,
	logger *slog.Logger,
) *ProfileService {
	return &ProfileService{
		profiles: profiles,
		accounts: accounts,
		logger:   logger,
	}
}

// GetOwn returns the caller's profile or NotFound "There is no profile for
// this user".
func (s *ProfileService) GetOwn(ctx context.Context, callerID string) (*model.Profile, error) {
	p, err := s.profiles.GetByUserID(ctx, callerID)
	if err != nil {
		return nil, s.wrap("loading own profile", err)
	}
	return p, nil
}

func (s *ProfileService) GetAll(ctx context.Context) ([]model.Profile, error) {
	profiles, err := s.profiles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/profile: listing profiles: %w", err)
	}
	return profiles, nil
}

// GetByUserID answers a malformed identifier exactly like an unknown one.
func (s *ProfileService) GetByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	if _, err := xid.FromString(userID); err != nil {
		return nil, apperror.NotFound("Profile not found")
	}

	p, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NotFound("Profile not found")
		}
		return nil, fmt.Errorf("service/profile: loading profile of %s: %w", userID, err)
	}
	return p, nil
}

// Upsert validates in and then either patches the caller's existing profile
// with the supplied fields or creates a new one from them.
func (s *ProfileService) Upsert(ctx context.Context, callerID string, in ProfileInput) (*model.Profile, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	skills := ParseSkills(in.Skills.Value)
	if len(skills) == 0 {
		return nil, apperror.Invalid([]apperror.FieldError{{
			Value:    in.Skills.Value,
			Msg:      "Skills is required",
			Param:    "skills",
			Location: "body",
		}})
	}

	upd := in.update(skills)

	_, err := s.profiles.GetByUserID(ctx, callerID)
	switch {
	case err == nil:
		if err := s.profiles.ApplyUpdate(ctx, callerID, upd); err != nil {
			return nil, s.wrap("updating profile", err)
		}
		s.logger.Info("profile updated", slog.String("userID", callerID))

	case errors.Is(err, apperror.ErrNotFound):
		p := &model.Profile{UserID: callerID}
		upd.ApplyTo(p)
		if err := s.profiles.Create(ctx, p); err != nil {
			return nil, s.wrap("creating profile", err)
		}
		s.logger.Info("profile created", slog.String("userID", callerID))

	default:
		return nil, fmt.Errorf("service/profile: loading profile: %w", err)
	}

	return s.GetOwn(ctx, callerID)
}

// DeleteOwn removes the caller's posts, profile and account together.
func (s *ProfileService) DeleteOwn(ctx context.Context, callerID string) error {
	if err := s.accounts.DeleteAccount(ctx, callerID); err != nil {
		return s.wrap("deleting account", err)
	}
	s.logger.Info("account deleted", slog.String("userID", callerID))
	return nil
}

// AddExperience puts a new entry at the front of the caller's experience.
func (s *ProfileService) AddExperience(ctx context.Context, callerID string, in ExperienceInput) (*model.Profile, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	from, to, err := parseRange(in.From, in.To)
	if err != nil {
		return nil, err
	}

	p, err := s.profiles.GetByUserID(ctx, callerID)
	if err != nil {
		return nil, s.wrap("loading profile", err)
	}

	entry := model.Experience{
		ID:          xid.New().String(),
		Title:       in.Title,
		Company:     in.Company,
		Location:    in.Location,
		From:        from,
		To:          to,
		Current:     in.Current,
		Description: in.Description,
	}
	p.Experience = append([]model.Experience{entry}, p.Experience...)

	if err := s.profiles.SaveEntries(ctx, p); err != nil {
		return nil, s.wrap("saving experience", err)
	}

	s.logger.Info("experience added",
		slog.String("userID", callerID),
		slog.String("entryID", entry.ID),
	)
	return p, nil
}

// RemoveExperience deletes one experience entry by id. An unknown id is
// NotFound and nothing is written.
func (s *ProfileService) RemoveExperience(ctx context.Context, callerID, entryID string) (*model.Profile, error) {
	p, err := s.profiles.GetByUserID(ctx, callerID)
	if err != nil {
		return nil, s.wrap("loading profile", err)
	}

	i := p.IndexOfExperience(entryID)
	if i < 0 {
		return nil, apperror.NotFound("Experience not found")
	}
	p.Experience = append(p.Experience[:i], p.Experience[i+1:]...)

	if err := s.profiles.SaveEntries(ctx, p); err != nil {
		return nil, s.wrap("saving experience", err)
	}

	s.logger.Info("experience removed",
		slog.String("userID", callerID),
		slog.String("entryID", entryID),
	)
	return p, nil
}

// AddEducation puts a new entry at the front of the caller's education.
func (s *ProfileService) AddEducation(ctx context.Context, callerID string, in EducationInput) (*model.Profile, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	from, to, err := parseRange(in.From, in.To)
	if err != nil {
		return nil, err
	}

	p, err := s.profiles.GetByUserID(ctx, callerID)
	if err != nil {
		return nil, s.wrap("loading profile", err)
	}

	entry := model.Education{
		ID:           xid.New().String(),
		School:       in.School,
		Degree:       in.Degree,
		FieldOfStudy: in.FieldOfStudy,
		From:         from,
		To:           to,
		Current:      in.Current,
		Description:  in.Description,
	}
	p.Education = append([]model.Education{entry}, p.Education...)

	if err := s.profiles.SaveEntries(ctx, p); err != nil {
		return nil, s.wrap("saving education", err)
	}

	s.logger.Info("education added",
		slog.String("userID", callerID),
		slog.String("entryID", entry.ID),
	)
	return p, nil
}

func (s *ProfileService) RemoveEducation(ctx context.Context, callerID, entryID string) (*model.Profile, error) {
	p, err := s.profiles.GetByUserID(ctx, callerID)
	if err != nil {
		return nil, s.wrap("loading profile", err)
	}

	i := p.IndexOfEducation(entryID)
	if i < 0 {
		return nil, apperror.NotFound("Education not found")
	}
	p.Education = append(p.Education[:i], p.Education[i+1:]...)

	if err := s.profiles.SaveEntries(ctx, p); err != nil {
		return nil, s.wrap("saving education", err)
	}

	s.logger.Info("education removed",
		slog.String("userID", callerID),
		slog.String("entryID", entryID),
	)
	return p, nil
}

// wrap passes typed application errors through untouched and adds context
// to everything else.
func (s *ProfileService) wrap(op string, err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return fmt.Errorf("service/profile: %s: %w", op, err)
}

// ParseSkills splits a comma-separated skills string into trimmed tokens.
// Empty tokens ("go,,sql", "go,") are dropped.
func ParseSkills(raw string) []string {
	skills := []string{}
	for _, tok := range strings.Split(raw, ",") {
		if tok = strings.TrimSpace(tok); tok != "" {
			skills = append(skills, tok)
		}
	}
	return skills
}

func (in ProfileInput) update(skills []string) model.ProfileUpdate {
	return model.ProfileUpdate{
		Company:        in.Company,
		Website:        in.Website,
		Location:       in.Location,
		Bio:            in.Bio,
		Status:         in.Status,
		GitHubUsername: in.GitHubUsername,
		Skills:         model.Some(skills),
		YouTube:        in.YouTube,
		Twitter:        in.Twitter,
		Facebook:       in.Facebook,
		LinkedIn:       in.LinkedIn,
		Instagram:      in.Instagram,
	}
}

// dateLayouts are the accepted formats for entry dates: a plain calendar
// date from a date input, or a full timestamp.
var dateLayouts = []string{"2006-01-02", time.RFC3339}

func parseDate(field, label, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperror.ValidationFailed(field, label+" date is invalid")
}

// parseRange parses the required from date and the optional to date.
func parseRange(fromRaw, toRaw string) (time.Time, *time.Time, error) {
	from, err := parseDate("from", "From", fromRaw)
	if err != nil {
		return time.Time{}, nil, err
	}
	if strings.TrimSpace(toRaw) == "" {
		return from, nil, nil
	}
	to, err := parseDate("to", "To", toRaw)
	if err != nil {
		return time.Time{}, nil, err
	}
	return from, &to, nil
}
