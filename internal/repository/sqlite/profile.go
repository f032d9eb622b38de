package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/rs/xid"

	"github.com/sakif/devconnector/internal/apperror"
	"github.com/sakif/devconnector/internal/model"
	"github.com/sakif/devconnector/internal/repository"
)

var _ repository.ProfileRepository = (*ProfileStore)(nil)

type ProfileStore struct {
	conn *sql.DB
}

// errNoProfile is the NotFound returned for a user without a profile.
func errNoProfile() error {
	return apperror.NotFound("There is no profile for this user")
}

// selectProfiles is the joined read used by every profile query: the owner's
// name and avatar come from users.
func selectProfiles() sq.SelectBuilder {
	return builder.Select(
		"p.id", "p.user_id", "u.name", "u.avatar",
		"p.company", "p.website", "p.location", "p.bio", "p.status",
		"p.skills", "p.githubusername", "p.social",
		"p.experience", "p.education",
		"p.created_at", "p.updated_at",
	).
		From("profiles p").
		Join("users u ON u.id = p.user_id")
}

func (s *ProfileStore) GetByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	query, args, err := selectProfiles().Where(sq.Eq{"p.user_id": userID}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("sqlite: building profile query: %w", err)
	}

	p, err := scanProfile(s.conn.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errNoProfile()
		}
		return nil, fmt.Errorf("sqlite: getting profile for user %s: %w", userID, err)
	}
	return p, nil
}

// List returns every profile in creation order.
func (s *ProfileStore) List(ctx context.Context) ([]model.Profile, error) {
	query, args, err := selectProfiles().OrderBy("p.created_at ASC", "p.id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("sqlite: building profile list query: %w", err)
	}

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing profiles: %w", err)
	}
	defer rows.Close()

	profiles := []model.Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning profile row: %w", err)
		}
		profiles = append(profiles, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating profiles: %w", err)
	}

	return profiles, nil
}

// Create inserts profile and fills in its ID and timestamps.
func (s *ProfileStore) Create(ctx context.Context, profile *model.Profile) error {
	skills, err := encodeJSON(profile.Skills)
	if err != nil {
		return fmt.Errorf("sqlite: encoding skills: %w", err)
	}
	social, err := json.Marshal(profile.Social)
	if err != nil {
		return fmt.Errorf("sqlite: encoding social: %w", err)
	}
	experience, err := encodeJSON(profile.Experience)
	if err != nil {
		return fmt.Errorf("sqlite: encoding experience: %w", err)
	}
	education, err := encodeJSON(profile.Education)
	if err != nil {
		return fmt.Errorf("sqlite: encoding education: %w", err)
	}

	profile.ID = xid.New().String()
	now := time.Now()
	profile.CreatedAt = now
	profile.UpdatedAt = now

	query, args, err := builder.Insert("profiles").
		Columns(
			"id", "user_id", "company", "website", "location", "bio", "status",
			"skills", "githubusername", "social", "experience", "education",
			"created_at", "updated_at",
		).
		Values(
			profile.ID, profile.UserID, profile.Company, profile.Website, profile.Location,
			profile.Bio, profile.Status, skills, profile.GitHubUsername, string(social),
			experience, education, profile.CreatedAt, profile.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("sqlite: building profile insert: %w", err)
	}

	if _, err := s.conn.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("Profile already exists")
		}
		// the owning account was deleted while its token is still valid
		if isForeignKeyViolation(err) {
			return apperror.Unauthorized("Token is not valid")
		}
		return fmt.Errorf("sqlite: creating profile for user %s: %w", profile.UserID, err)
	}

	return nil
}

// ApplyUpdate writes the supplied fields of upd in a single UPDATE.
//
// Social links are patched inside the JSON column with nested json_set calls,
// so "twitter" alone leaves the other links untouched. updated_at is always
// bumped, which also keeps the statement valid when nothing else is set.
func (s *ProfileStore) ApplyUpdate(ctx context.Context, userID string, upd model.ProfileUpdate) error {
	b := builder.Update("profiles")

	setString := func(col string, o model.Optional[string]) {
		if o.Set {
			b = b.Set(col, o.Value)
		}
	}
	setString("company", upd.Company)
	setString("website", upd.Website)
	setString("location", upd.Location)
	setString("bio", upd.Bio)
	setString("status", upd.Status)
	setString("githubusername", upd.GitHubUsername)

	if upd.Skills.Set {
		skills, err := encodeJSON(upd.Skills.Value)
		if err != nil {
			return fmt.Errorf("sqlite: encoding skills: %w", err)
		}
		b = b.Set("skills", skills)
	}

	expr := "social"
	var socialArgs []any
	for _, link := range []struct {
		key string
		val model.Optional[string]
	}{
		{"youtube", upd.YouTube},
		{"twitter", upd.Twitter},
		{"facebook", upd.Facebook},
		{"linkedin", upd.LinkedIn},
		{"instagram", upd.Instagram},
	} {
		if link.val.Set {
			expr = fmt.Sprintf("json_set(%s, '$.%s', ?)", expr, link.key)
			socialArgs = append(socialArgs, link.val.Value)
		}
	}
	if len(socialArgs) > 0 {
		b = b.Set("social", sq.Expr(expr, socialArgs...))
	}

	b = b.Set("updated_at", time.Now()).Where(sq.Eq{"user_id": userID})

	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("sqlite: building profile update: %w", err)
	}

	result, err := s.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("sqlite: updating profile for user %s: %w", userID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return errNoProfile()
	}

	return nil
}

// SaveEntries writes back the experience and education lists after an
// in-memory mutation.
func (s *ProfileStore) SaveEntries(ctx context.Context, profile *model.Profile) error {
	experience, err := encodeJSON(profile.Experience)
	if err != nil {
		return fmt.Errorf("sqlite: encoding experience: %w", err)
	}
	education, err := encodeJSON(profile.Education)
	if err != nil {
		return fmt.Errorf("sqlite: encoding education: %w", err)
	}

	profile.UpdatedAt = time.Now()

	result, err := s.conn.ExecContext(ctx,
		`UPDATE profiles SET experience = ?, education = ?, updated_at = ? WHERE id = ?`,
		experience,
		education,
		profile.UpdatedAt,
		profile.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: saving entries for profile %s: %w", profile.ID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return errNoProfile()
	}

	return nil
}

func scanProfile(row scanner) (*model.Profile, error) {
	var (
		p                                     model.Profile
		owner                                 model.UserRef
		skills, social, experience, education string
	)
	err := row.Scan(
		&p.ID, &p.UserID, &owner.Name, &owner.Avatar,
		&p.Company, &p.Website, &p.Location, &p.Bio, &p.Status,
		&skills, &p.GitHubUsername, &social,
		&experience, &education,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	owner.ID = p.UserID
	p.User = &owner

	if p.Skills, err = decodeJSON[string](skills); err != nil {
		return nil, fmt.Errorf("decoding skills: %w", err)
	}
	if social != "" {
		if err := json.Unmarshal([]byte(social), &p.Social); err != nil {
			return nil, fmt.Errorf("decoding social: %w", err)
		}
	}
	if p.Experience, err = decodeJSON[model.Experience](experience); err != nil {
		return nil, fmt.Errorf("decoding experience: %w", err)
	}
	if p.Education, err = decodeJSON[model.Education](education); err != nil {
		return nil, fmt.Errorf("decoding education: %w", err)
	}

	return &p, nil
}
