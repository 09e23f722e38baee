package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/MarcosViniicius/projeto-avaria-usointerno/internal/domain"
	"github.com/MarcosViniicius/projeto-avaria-usointerno/internal/repository"
)

// MinPasswordLength 是注册和修改密码时允许的最短密码。
const MinPasswordLength = 6

// RememberDuration 是勾选“记住我”后会话的有效期。
const RememberDuration = 365 * 24 * time.Hour

// AuthService 负责用户认证相关的业务逻辑。
type AuthService struct {
	userRepo   repository.UserRepository
	jwtSecret  []byte
	sessionTTL time.Duration
	setupKey   string
	now        func() time.Time
}

// NewAuthService 创建 AuthService 实例。
// sessionHours 是未勾选“记住我”时的会话有效期，setupKey 是首个管理员的注册密钥。
func NewAuthService(userRepo repository.UserRepository, jwtSecretKey string, sessionHours int, setupKey string) (*AuthService, error) {
	if userRepo == nil {
		panic("UserRepository cannot be nil for AuthService")
	}
	if jwtSecretKey == "" {
		return nil, fmt.Errorf("JWT secret key cannot be empty")
	}
	if sessionHours <= 0 {
		sessionHours = 24
	}
	return &AuthService{
		userRepo:   userRepo,
		jwtSecret:  []byte(jwtSecretKey),
		sessionTTL: time.Duration(sessionHours) * time.Hour,
		setupKey:   setupKey,
		now:        time.Now,
	}, nil
}

// RegisterInput 是注册表单提交的数据。
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Confirm  string
	AdminKey string
}

// Register 处理用户注册。
// 系统中还没有管理员且 AdminKey 正确时，新账号成为管理员。
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	logCtx := logrus.WithFields(logrus.Fields{"username": in.Username, "email": in.Email})

	if in.Username == "" || in.Email == "" || in.Password == "" || in.Confirm == "" {
		return nil, invalid("Por favor, preencha todos os campos.")
	}
	if in.Password != in.Confirm {
		return nil, invalid("As senhas não coincidem.")
	}
	if len(in.Password) < MinPasswordLength {
		return nil, invalid(fmt.Sprintf("A senha deve ter pelo menos %d caracteres.", MinPasswordLength))
	}

	if _, err := s.userRepo.FindByUsername(ctx, in.Username); err == nil {
		return nil, invalid("Nome de usuário já existe.")
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		logCtx.WithError(err).Error("Failed to check username availability")
		return nil, ErrInternalServer
	}
	if _, err := s.userRepo.FindByEmail(ctx, in.Email); err == nil {
		return nil, invalid("Email já cadastrado.")
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		logCtx.WithError(err).Error("Failed to check email availability")
		return nil, ErrInternalServer
	}

	adminExists, err := s.userRepo.AdminExists(ctx)
	if err != nil {
		logCtx.WithError(err).Error("Failed to check for existing admin")
		return nil, ErrInternalServer
	}

	hashedPassword, err := hashPassword(in.Password)
	if err != nil {
		logCtx.WithError(err).Error("Failed to hash password during registration")
		return nil, ErrInternalServer
	}

	user := &domain.User{
		Username: in.Username,
		Email:    in.Email,
		Password: hashedPassword,
		IsAdmin:  !adminExists && s.setupKey != "" && in.AdminKey == s.setupKey,
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			logCtx.WithError(err).Warn("Registration failed: username or email already exists (repo error)")
			return nil, invalid("Nome de usuário ou email já cadastrado.")
		}
		logCtx.WithError(err).Error("Database error during user creation")
		return nil, ErrInternalServer
	}

	logCtx.WithFields(logrus.Fields{"user_id": user.ID, "is_admin": user.IsAdmin}).Info("User registered successfully")
	user.Password = ""
	return user, nil
}

// AdminExists 报告系统中是否已经有管理员，注册页面据此决定是否显示管理员密钥。
func (s *AuthService) AdminExists(ctx context.Context) (bool, error) {
	exists, err := s.userRepo.AdminExists(ctx)
	if err != nil {
		logrus.WithError(err).Error("Failed to check for existing admin")
		return false, ErrInternalServer
	}
	return exists, nil
}

// Session 是登录成功后签发的会话。
type Session struct {
	Token      string
	ExpiresAt  time.Time
	Persistent bool // 为 true 时 cookie 需要带过期时间
}

// Login 处理用户登录，先写入最后登录时间再签发会话。
func (s *AuthService) Login(ctx context.Context, username, password string, remember bool) (*domain.User, *Session, error) {
	logCtx := logrus.WithField("username", username)

	if username == "" || password == "" {
		return nil, nil, invalid("Por favor, preencha todos os campos.")
	}

	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			logCtx.Warn("Login attempt failed: User not found")
			return nil, nil, ErrAuthenticationFailed
		}
		logCtx.WithError(err).Error("Login attempt failed: Error finding user")
		return nil, nil, ErrInternalServer
	}
	if !checkPassword(password, user.Password) {
		logCtx.Warn("Login attempt failed: Invalid password")
		return nil, nil, ErrAuthenticationFailed
	}

	now := s.now()
	user.LastLogin = &now
	if err := s.userRepo.Save(ctx, user); err != nil {
		logCtx.WithError(err).Error("Failed to update last login")
		return nil, nil, ErrInternalServer
	}

	ttl := s.sessionTTL
	if remember {
		ttl = RememberDuration
	}
	expiresAt := now.Add(ttl)
	token, err := s.generateJWT(user.ID, now, expiresAt)
	if err != nil {
		logCtx.WithError(err).Error("Failed to generate session token during login")
		return nil, nil, ErrInternalServer
	}

	logCtx.WithFields(logrus.Fields{"user_id": user.ID, "remember": remember}).Info("User logged in successfully")
	return user, &Session{Token: token, ExpiresAt: expiresAt, Persistent: remember}, nil
}

// ChangePassword 修改当前用户的密码。
func (s *AuthService) ChangePassword(ctx context.Context, userID uint, current, newPassword, confirm string) error {
	logCtx := logrus.WithField("user_id", userID)

	if current == "" || newPassword == "" || confirm == "" {
		return invalid("Por favor, preencha todos os campos.")
	}
	user, err := s.FindUser(ctx, userID)
	if err != nil {
		return err
	}
	if !checkPassword(current, user.Password) {
		return invalid("Senha atual incorreta.")
	}
	if newPassword != confirm {
		return invalid("As novas senhas não coincidem.")
	}
	if len(newPassword) < MinPasswordLength {
		return invalid(fmt.Sprintf("A nova senha deve ter pelo menos %d caracteres.", MinPasswordLength))
	}

	hashed, err := hashPassword(newPassword)
	if err != nil {
		logCtx.WithError(err).Error("Failed to hash new password")
		return ErrInternalServer
	}
	user.Password = hashed
	if err := s.userRepo.Save(ctx, user); err != nil {
		logCtx.WithError(err).Error("Failed to save new password")
		return ErrInternalServer
	}
	logCtx.Info("Password changed successfully")
	return nil
}

// FindUser 根据 ID 加载用户，供认证中间件使用。
func (s *AuthService) FindUser(ctx context.Context, id uint) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		logrus.WithError(err).WithField("user_id", id).Error("FindUser: Repository error")
		return nil, ErrInternalServer
	}
	return user, nil
}

// --- 私有辅助函数 ---

// hashPassword 使用 bcrypt 对密码进行哈希处理
func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to generate hash from password: %w", err)
	}
	return string(bytes), nil
}

// HashPassword 供初始化脚本创建种子账号使用。
func HashPassword(password string) (string, error) {
	return hashPassword(password)
}

// checkPassword 验证提供的密码是否与存储的哈希匹配
func checkPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// generateJWT 为指定用户 ID 生成会话 token
func (s *AuthService) generateJWT(userID uint, issuedAt, expiresAt time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     expiresAt.Unix(),
		"iat":     issuedAt.Unix(),
	})
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}
