package repository

import (
	"context"
	"errors"
	"time"

	"anoa.com/moodtracker/internal/entity"
	"anoa.com/moodtracker/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LedgerRepository is the record store behind the progression engine.
type LedgerRepository interface {
	// FindLedger returns apperror.ErrNotFound when the user has no ledger.
	FindLedger(ctx context.Context, userID uuid.UUID) (*entity.UserLedger, error)
	// CreateLedger inserts the ledger unless one exists. Reports whether a row was created.
	CreateLedger(ctx context.Context, ledger *entity.UserLedger) (bool, error)
	// ApplyAward writes next only if the stored version still equals expectedVersion,
	// and appends txn in the same database transaction. Returns false on a lost race.
	ApplyAward(ctx context.Context, next *entity.UserLedger, expectedVersion int64, txn *entity.XPTransaction) (bool, error)

	// AddArticleRead adds articleID to the read set. Returns false if it was already there.
	AddArticleRead(ctx context.Context, userID uuid.UUID, articleID string) (bool, error)
	RemoveArticleRead(ctx context.Context, userID uuid.UUID, articleID string) error

	HasTransaction(ctx context.Context, userID uuid.UUID, source string) (bool, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, limit int) ([]entity.XPTransaction, error)
	SumTransactionsSince(ctx context.Context, userID uuid.UUID, since time.Time) (int, error)
	// MostFrequentSource returns "" when the user has no transactions.
	// Ties resolve to the lexically smallest source.
	MostFrequentSource(ctx context.Context, userID uuid.UUID) (string, error)
}

var errVersionMismatch = errors.New("ledger version mismatch")

type ledgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) FindLedger(ctx context.Context, userID uuid.UUID) (*entity.UserLedger, error) {
	var ledger entity.UserLedger
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&ledger).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	return &ledger, nil
}

func (r *ledgerRepository) CreateLedger(ctx context.Context, ledger *entity.UserLedger) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(ledger)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *ledgerRepository) ApplyAward(ctx context.Context, next *entity.UserLedger, expectedVersion int64, txn *entity.XPTransaction) (bool, error) {
	now := time.Now()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&entity.UserLedger{}).
			Where("user_id = ? AND version = ?", next.UserID, expectedVersion).
			Updates(map[string]interface{}{
				"total_xp":               next.TotalXP,
				"level":                  next.Level,
				"last_daily_login_award": next.LastDailyLoginAward,
				"last_streak7_award":     next.LastStreak7Award,
				"last_streak30_award":    next.LastStreak30Award,
				"version":                expectedVersion + 1,
				"updated_at":             now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errVersionMismatch
		}

		if txn != nil {
			if err := tx.Create(txn).Error; err != nil {
				return err
			}
		}
		return nil
	})

	if errors.Is(err, errVersionMismatch) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	next.Version = expectedVersion + 1
	next.UpdatedAt = now
	return true, nil
}

func (r *ledgerRepository) AddArticleRead(ctx context.Context, userID uuid.UUID, articleID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entity.LedgerArticleRead{UserID: userID, ArticleID: articleID})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *ledgerRepository) RemoveArticleRead(ctx context.Context, userID uuid.UUID, articleID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND article_id = ?", userID, articleID).
		Delete(&entity.LedgerArticleRead{}).Error
}

func (r *ledgerRepository) HasTransaction(ctx context.Context, userID uuid.UUID, source string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.XPTransaction{}).
		Where("user_id = ? AND source = ?", userID, source).
		Count(&count).Error
	return count > 0, err
}

func (r *ledgerRepository) ListTransactions(ctx context.Context, userID uuid.UUID, limit int) ([]entity.XPTransaction, error) {
	var txns []entity.XPTransaction
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&txns).Error
	return txns, err
}

func (r *ledgerRepository) SumTransactionsSince(ctx context.Context, userID uuid.UUID, since time.Time) (int, error) {
	var total int
	err := r.db.WithContext(ctx).Model(&entity.XPTransaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND created_at >= ?", userID, since).
		Scan(&total).Error
	return total, err
}

func (r *ledgerRepository) MostFrequentSource(ctx context.Context, userID uuid.UUID) (string, error) {
	type sourceCount struct {
		Source string
		Hits   int64
	}
	var rows []sourceCount
	err := r.db.WithContext(ctx).Model(&entity.XPTransaction{}).
		Select("source, COUNT(*) AS hits").
		Where("user_id = ?", userID).
		Group("source").
		Order("hits DESC, source ASC").
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", nil
	}
	return rows[0].Source, nil
}
