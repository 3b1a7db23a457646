package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"github.com/valutatrade/tradehub/internal/apperrors"
	"github.com/valutatrade/tradehub/internal/core/domain"
	portsrepo "github.com/valutatrade/tradehub/internal/core/ports/repositories"
)

// Store is the JSON-file persistence gateway for users and portfolios.
// Whole lists are loaded and saved; numbers are written as plain JSON
// floats to keep the file format stable.
type Store struct {
	usersPath      string
	portfoliosPath string
}

// NewStore creates a gateway writing to the given file paths.
func NewStore(usersPath, portfoliosPath string) *Store {
	return &Store{usersPath: usersPath, portfoliosPath: portfoliosPath}
}

var _ portsrepo.UserRepositoryFacade = (*Store)(nil)
var _ portsrepo.PortfolioRepositoryFacade = (*Store)(nil)

type userRecord struct {
	UserID           int64  `json:"user_id"`
	Username         string `json:"username"`
	PasswordHash     string `json:"password_hash"`
	Salt             string `json:"salt"`
	RegistrationDate string `json:"registration_date"`
}

type walletRecord struct {
	CurrencyCode string  `json:"currency_code"`
	Balance      float64 `json:"balance"`
}

type portfolioRecord struct {
	UserID  int64                   `json:"user_id"`
	Wallets map[string]walletRecord `json:"wallets"`
}

// LoadUsers reads the full user list; a missing file yields an empty list.
func (s *Store) LoadUsers(ctx context.Context) ([]domain.User, error) {
	var records []userRecord
	if err := readJSON(s.usersPath, &records); err != nil {
		return nil, err
	}
	users := make([]domain.User, 0, len(records))
	for i, rec := range records {
		registered, err := time.Parse(time.RFC3339Nano, rec.RegistrationDate)
		if err != nil {
			return nil, fmt.Errorf("%w: user [%d]: bad registration_date: %v", apperrors.ErrCorruptData, i, err)
		}
		users = append(users, domain.User{
			UserID:           rec.UserID,
			Username:         rec.Username,
			PasswordHash:     rec.PasswordHash,
			Salt:             rec.Salt,
			RegistrationDate: registered,
		})
	}
	return users, nil
}

// SaveUsers writes the full user list.
func (s *Store) SaveUsers(ctx context.Context, users []domain.User) error {
	records := make([]userRecord, 0, len(users))
	for _, u := range users {
		records = append(records, userRecord{
			UserID:           u.UserID,
			Username:         u.Username,
			PasswordHash:     u.PasswordHash,
			Salt:             u.Salt,
			RegistrationDate: u.RegistrationDate.Format(time.RFC3339Nano),
		})
	}
	return writeJSON(s.usersPath, records)
}

// LoadPortfolios reads the full portfolio list; a missing file yields an
// empty list.
func (s *Store) LoadPortfolios(ctx context.Context) ([]*domain.Portfolio, error) {
	var records []portfolioRecord
	if err := readJSON(s.portfoliosPath, &records); err != nil {
		return nil, err
	}
	portfolios := make([]*domain.Portfolio, 0, len(records))
	for _, rec := range records {
		p := domain.NewPortfolio(rec.UserID)
		for code, w := range rec.Wallets {
			p.Wallets[code] = &domain.Wallet{
				CurrencyCode: w.CurrencyCode,
				Balance:      decimal.NewFromFloat(w.Balance),
			}
		}
		portfolios = append(portfolios, p)
	}
	return portfolios, nil
}

// SavePortfolios writes the full portfolio list.
func (s *Store) SavePortfolios(ctx context.Context, portfolios []*domain.Portfolio) error {
	records := make([]portfolioRecord, 0, len(portfolios))
	for _, p := range portfolios {
		rec := portfolioRecord{UserID: p.UserID, Wallets: map[string]walletRecord{}}
		for code, w := range p.Wallets {
			rec.Wallets[code] = walletRecord{
				CurrencyCode: w.CurrencyCode,
				Balance:      w.Balance.InexactFloat64(),
			}
		}
		records = append(records, rec)
	}
	return writeJSON(s.portfoliosPath, records)
}

// readJSON decodes the file into out; a missing file leaves out untouched.
func readJSON(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("%w: reading %s: %v", apperrors.ErrPersistence, path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: decoding %s: %v", apperrors.ErrCorruptData, path, err)
	}
	return nil
}

// writeJSON writes out as indented JSON via a temp file rename, so readers
// never see a torn file.
func writeJSON(path string, in any) error {
	data, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encoding %s: %v", apperrors.ErrPersistence, path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: creating data dir for %s: %v", apperrors.ErrPersistence, path, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("%w: writing %s: %v", apperrors.ErrPersistence, tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("%w: replacing %s: %v", apperrors.ErrPersistence, path, err)
	}
	return nil
}
