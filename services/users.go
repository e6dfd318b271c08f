package services

import (
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"store-service/models"
	"store-service/utils"
)

type UserService struct {
	db        *sql.DB
	jwtSecret string
}

func NewUserService(db *sql.DB, jwtSecret string) *UserService {
	return &UserService{db: db, jwtSecret: jwtSecret}
}

// Register 注册新用户并签发令牌
func (s *UserService) Register(req models.RegisterRequest) (*models.User, string, error) {
	var existingID int64
	err := s.db.QueryRow(
		`SELECT id FROM users WHERE email = ? OR username = ?`, req.Email, req.Username,
	).Scan(&existingID)
	if err == nil {
		return nil, "", fmt.Errorf("%w: user with this email or username", ErrAlreadyExists)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	res, err := s.db.Exec(
		`INSERT INTO users (username, email, password_hash, phone_number, address, role, is_active)
		 VALUES (?, ?, ?, ?, ?, 'user', TRUE)`,
		req.Username, req.Email, string(hash), nullable(req.PhoneNumber), nullable(req.Address),
	)
	if err != nil {
		return nil, "", err
	}
	userID, err := res.LastInsertId()
	if err != nil {
		return nil, "", err
	}

	token, err := utils.GenerateToken(userID, req.Email, req.Username, "user", s.jwtSecret)
	if err != nil {
		return nil, "", err
	}

	return &models.User{
		ID:          userID,
		Username:    req.Username,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
		Role:        "user",
	}, token, nil
}

// Login 仅允许激活用户登录，成功后更新last_login
func (s *UserService) Login(req models.LoginRequest) (*models.User, string, error) {
	var (
		u     models.User
		hash  string
		phone sql.NullString
		addr  sql.NullString
	)
	err := s.db.QueryRow(
		`SELECT id, username, email, password_hash, phone_number, address, role
		 FROM users WHERE email = ? AND is_active = TRUE`, req.Email,
	).Scan(&u.ID, &u.Username, &u.Email, &hash, &phone, &addr, &u.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", fmt.Errorf("%w: invalid email or password", ErrForbidden)
	}
	if err != nil {
		return nil, "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
		return nil, "", fmt.Errorf("%w: invalid email or password", ErrForbidden)
	}

	if _, err := s.db.Exec(`UPDATE users SET last_login = CURRENT_TIMESTAMP WHERE id = ?`, u.ID); err != nil {
		return nil, "", err
	}

	u.PhoneNumber = phone.String
	u.Address = addr.String
	token, err := utils.GenerateToken(u.ID, u.Email, u.Username, u.Role, s.jwtSecret)
	if err != nil {
		return nil, "", err
	}
	return &u, token, nil
}

func (s *UserService) GetProfile(userID int64) (*models.User, error) {
	var u models.User
	err := s.db.QueryRow(
		`SELECT id, username, email, role FROM users WHERE id = ?`, userID,
	).Scan(&u.ID, &u.Username, &u.Email, &u.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
