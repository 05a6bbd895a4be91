package account

import (
	"context"
	"errors"

	"github.com/globalbuilder/tourismserver/internal/db"
	"github.com/globalbuilder/tourismserver/internal/policy"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrPasswordMismatch  = errors.New("passwords do not match")
	ErrOldPasswordWrong  = errors.New("old password is incorrect")
	ErrInvalidCredential = errors.New("invalid credentials")
)

type Service struct {
	db db.Querier
}

func NewService(q db.Querier) *Service {
	return &Service{db: q}
}

// Register creates the user together with its profile in one transaction,
// so the one-profile-per-user invariant holds from the first row on.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (User, error) {
	if req.Username == "" || req.Password1 == "" {
		return User{}, errors.New("username and password required")
	}
	if req.Password1 != req.Password2 {
		return User{}, ErrPasswordMismatch
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password1), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	user := User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		IsActive:     true,
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return User{}, err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		INSERT INTO users (id, username, email, password_hash, first_name, last_name, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at
	`, user.ID, user.Username, user.Email, user.PasswordHash, user.FirstName, user.LastName, user.IsActive)
	if err := row.Scan(&user.CreatedAt); err != nil {
		return User{}, err
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO profiles (user_id, image_url)
		VALUES ($1,$2)
	`, user.ID, req.ImageURL); err != nil {
		return User{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return User{}, err
	}
	return user, nil
}

func (s *Service) Authenticate(ctx context.Context, username, password string) (User, error) {
	user, err := s.userByUsername(ctx, username)
	if err != nil {
		return User{}, ErrInvalidCredential
	}
	if !user.IsActive {
		return User{}, ErrInvalidCredential
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return User{}, ErrInvalidCredential
	}
	return user, nil
}

func (s *Service) GetUser(ctx context.Context, id string) (User, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, username, email, password_hash, first_name, last_name,
		       is_staff, is_superuser, is_active, is_verified, created_at
		FROM users WHERE id=$1
	`, id)
	return scanUser(row)
}

// UpdateUser mutates the caller's own mutable fields. Username, role flags
// and is_verified are not client-writable.
func (s *Service) UpdateUser(ctx context.Context, id string, patch User) (User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return User{}, err
	}
	if patch.Email != "" {
		user.Email = patch.Email
	}
	if patch.FirstName != "" {
		user.FirstName = patch.FirstName
	}
	if patch.LastName != "" {
		user.LastName = patch.LastName
	}

	_, err = s.db.Exec(ctx, `
		UPDATE users SET email=$2, first_name=$3, last_name=$4
		WHERE id=$1
	`, user.ID, user.Email, user.FirstName, user.LastName)
	if err != nil {
		return User{}, err
	}
	return user, nil
}

func (s *Service) ChangePassword(ctx context.Context, id string, req ChangePasswordRequest) error {
	if req.NewPassword1 != req.NewPassword2 {
		return ErrPasswordMismatch
	}

	user, err := s.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		return ErrOldPasswordWrong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword1), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `UPDATE users SET password_hash=$2 WHERE id=$1`, id, string(hash))
	return err
}

func (s *Service) GetProfile(ctx context.Context, userID string) (Profile, error) {
	row := s.db.QueryRow(ctx, `
		SELECT user_id, COALESCE(phone_number,''), COALESCE(date_of_birth,''),
		       COALESCE(image_url,''), COALESCE(address,''), COALESCE(biography,''), COALESCE(website,'')
		FROM profiles WHERE user_id=$1
	`, userID)
	var p Profile
	if err := row.Scan(&p.UserID, &p.PhoneNumber, &p.DateOfBirth, &p.ImageURL, &p.Address, &p.Biography, &p.Website); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, policy.ErrNotFound
		}
		return Profile{}, err
	}
	return p, nil
}

// CreateProfile exists for accounts whose profile row was removed out of
// band; registration normally creates it. The duplicate check enforces
// the 1:1 invariant at the boundary, the schema enforces it again.
func (s *Service) CreateProfile(ctx context.Context, userID string, p Profile) (Profile, error) {
	var exists bool
	if err := s.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM profiles WHERE user_id=$1)
	`, userID).Scan(&exists); err != nil {
		return Profile{}, err
	}
	if err := policy.CanCreateProfile(exists); err != nil {
		return Profile{}, err
	}

	p.UserID = userID
	_, err := s.db.Exec(ctx, `
		INSERT INTO profiles (user_id, phone_number, date_of_birth, image_url, address, biography, website)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, p.UserID, p.PhoneNumber, p.DateOfBirth, p.ImageURL, p.Address, p.Biography, p.Website)
	if err != nil {
		return Profile{}, err
	}
	return p, nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID string, patch Profile) (Profile, error) {
	p, err := s.GetProfile(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	if patch.PhoneNumber != "" {
		p.PhoneNumber = patch.PhoneNumber
	}
	if patch.DateOfBirth != "" {
		p.DateOfBirth = patch.DateOfBirth
	}
	if patch.ImageURL != "" {
		p.ImageURL = patch.ImageURL
	}
	if patch.Address != "" {
		p.Address = patch.Address
	}
	if patch.Biography != "" {
		p.Biography = patch.Biography
	}
	if patch.Website != "" {
		p.Website = patch.Website
	}

	_, err = s.db.Exec(ctx, `
		UPDATE profiles
		SET phone_number=$2, date_of_birth=$3, image_url=$4, address=$5, biography=$6, website=$7
		WHERE user_id=$1
	`, p.UserID, p.PhoneNumber, p.DateOfBirth, p.ImageURL, p.Address, p.Biography, p.Website)
	if err != nil {
		return Profile{}, err
	}
	return p, nil
}

func (s *Service) userByUsername(ctx context.Context, username string) (User, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, username, email, password_hash, first_name, last_name,
		       is_staff, is_superuser, is_active, is_verified, created_at
		FROM users WHERE username=$1
	`, username)
	return scanUser(row)
}

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.IsStaff, &u.IsSuperuser, &u.IsActive, &u.IsVerified, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, policy.ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

// CallerFor maps a stored user onto the policy identity embedded in its
// tokens.
func CallerFor(u User) policy.Caller {
	return policy.Caller{ID: u.ID, IsStaff: u.IsStaff, IsSuperuser: u.IsSuperuser}
}
