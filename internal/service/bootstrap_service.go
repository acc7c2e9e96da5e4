package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/cyber-Je-di/tuta-pamodzi/internal/models"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/repository"
)

// DefaultUniversities are created on first boot.
var DefaultUniversities = []string{"UNZA", "CBU", "MU", "ZICAS", "Cavendish"}

// AdminCredentials describes an administrator account to create.
type AdminCredentials struct {
	Username string `json:"username" validate:"required,min=4,max=25,alphanum"`
	Email    string `json:"email" validate:"required,email,max=255"`
	FullName string `json:"full_name" validate:"required,notblank,max=120"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// BootstrapReport lists what a bootstrap run created.
type BootstrapReport struct {
	SettingsCreated     bool
	UniversitiesCreated []string
	AdminCreated        bool
}

// BootstrapService seeds reference data and manages administrator accounts.
type BootstrapService interface {
	Run(ctx context.Context) (BootstrapReport, error)
	CreateAdmin(ctx context.Context, creds AdminCredentials) (models.Account, error)
	ResetPassword(ctx context.Context, username, password string) error
}

type bootstrapService struct {
	settings     repository.SettingRepository
	affiliations repository.AffiliationRepository
	accounts     repository.AccountRepository
	defaultRate  float64
	admin        AdminCredentials
	validator    *validator.Validate
	logger       zerolog.Logger
}

// NewBootstrapService constructs the bootstrap service. admin is created by
// Run when its password is set and no account holds its username.
func NewBootstrapService(
	settings repository.SettingRepository,
	affiliations repository.AffiliationRepository,
	accounts repository.AccountRepository,
	defaultRate float64,
	admin AdminCredentials,
	validate *validator.Validate,
	logger zerolog.Logger,
) BootstrapService {
	return &bootstrapService{
		settings:     settings,
		affiliations: affiliations,
		accounts:     accounts,
		defaultRate:  defaultRate,
		admin:        admin,
		validator:    validate,
		logger:       logger.With().Str("component", "bootstrap_service").Logger(),
	}
}

func (s *bootstrapService) Run(ctx context.Context) (BootstrapReport, error) {
	var report BootstrapReport

	_, created, err := s.settings.EnsureDefault(ctx, s.defaultRate)
	if err != nil {
		return report, err
	}
	report.SettingsCreated = created

	for _, name := range DefaultUniversities {
		_, err := s.affiliations.FindUniversityByName(ctx, name)
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return report, err
		}
		university := models.University{Name: name}
		if err := s.affiliations.CreateUniversity(ctx, &university); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				continue
			}
			return report, err
		}
		report.UniversitiesCreated = append(report.UniversitiesCreated, name)
	}

	if strings.TrimSpace(s.admin.Password) == "" {
		s.logger.Warn().Msg("admin password not configured, skipping default admin")
	} else if _, err := s.CreateAdmin(ctx, s.admin); err == nil {
		report.AdminCreated = true
	} else if !errors.Is(err, ErrUsernameTaken) {
		return report, err
	}

	s.logger.Info().
		Bool("settings_created", report.SettingsCreated).
		Int("universities_created", len(report.UniversitiesCreated)).
		Bool("admin_created", report.AdminCreated).
		Msg("bootstrap complete")
	return report, nil
}

func (s *bootstrapService) CreateAdmin(ctx context.Context, creds AdminCredentials) (models.Account, error) {
	if err := validateStruct(s.validator, creds); err != nil {
		return models.Account{}, err
	}

	taken, err := s.accounts.UsernameExists(ctx, creds.Username)
	if err != nil {
		return models.Account{}, err
	}
	if taken {
		return models.Account{}, ErrUsernameTaken
	}

	account, err := newAccount(models.RoleAdmin, creds.Username, creds.Email, creds.FullName, creds.Password, 0)
	if err != nil {
		return models.Account{}, err
	}
	if err := s.accounts.Create(ctx, &account); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.Account{}, ErrEmailTaken
		}
		return models.Account{}, err
	}

	s.logger.Info().Uint("account_id", account.ID).Str("username", account.Username).Str("email", maskEmailAddress(account.Email)).Msg("admin created")
	return account, nil
}

func (s *bootstrapService) ResetPassword(ctx context.Context, username, password string) error {
	if len(password) < 6 || len(password) > 72 {
		return invalidField("password", "password must be between 6 and 72 characters")
	}

	account, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAccountNotFound
		}
		return err
	}
	if err := account.SetPassword(password); err != nil {
		return err
	}
	if err := s.accounts.UpdatePassword(ctx, account.ID, account.PasswordHash); err != nil {
		return err
	}

	s.logger.Info().Uint("account_id", account.ID).Msg("password reset")
	return nil
}
