package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"anoa.com/moodtracker/internal/entity"
	"anoa.com/moodtracker/pkg/logger"
	"github.com/google/uuid"
	"github.com/meilisearch/meilisearch-go"
)

const (
	MoodIndex = "mood_entries"

	signingKeyName = "MoodNotesTenantSigner"
)

// NoteHit is one mood note matching a search.
type NoteHit struct {
	ID         string `json:"id"`
	Mood       int    `json:"mood"`
	Note       string `json:"note"`
	RecordedAt int64  `json:"recorded_at"`
}

type MeiliSearchService interface {
	IndexMoodEntry(ctx context.Context, entry *entity.MoodEntry) error
	SearchNotes(ctx context.Context, userID uuid.UUID, query string, limit int) ([]NoteHit, error)
	// GenerateSearchToken returns a tenant token that can only see the user's own notes.
	GenerateSearchToken(userID uuid.UUID) (string, error)
}

type meiliSearchService struct {
	client        meilisearch.ServiceManager
	signingKeyUID string
	signingKey    string
	log           *logger.Logger
}

func NewMeiliSearchService(client meilisearch.ServiceManager, baseLog *logger.Logger) MeiliSearchService {
	if baseLog == nil {
		baseLog = logger.Nop()
	}
	s := &meiliSearchService{
		client: client,
		log:    baseLog.With("service", "MeiliSearchService"),
	}
	s.initIndexes()
	s.initSigningKey()
	return s
}

func (s *meiliSearchService) initSigningKey() {
	resp, err := s.client.GetKeys(&meilisearch.KeysQuery{
		Limit: 20,
	})
	if err != nil {
		s.log.Warn("failed to list meilisearch keys", "error", err)
		return
	}

	for _, key := range resp.Results {
		if key.Name == signingKeyName {
			s.signingKeyUID = key.UID
			s.signingKey = key.Key
			s.log.Debug("found existing meilisearch signing key")
			return
		}
	}

	key, err := s.client.CreateKey(&meilisearch.Key{
		Description: "Key to sign mood note tenant tokens",
		Name:        signingKeyName,
		Actions:     []string{"search"},
		Indexes:     []string{MoodIndex},
		ExpiresAt:   time.Now().AddDate(100, 0, 0),
	})
	if err != nil {
		s.log.Warn("failed to create meilisearch signing key", "error", err)
		return
	}

	s.signingKeyUID = key.UID
	s.signingKey = key.Key
	s.log.Info("created meilisearch signing key")
}

func (s *meiliSearchService) initIndexes() {
	filterable := []any{"user_id"}
	if _, err := s.client.Index(MoodIndex).UpdateFilterableAttributes(&filterable); err != nil {
		s.log.Warn("failed to update mood filterable attributes", "error", err)
	}

	sortable := []string{"recorded_at"}
	if _, err := s.client.Index(MoodIndex).UpdateSortableAttributes(&sortable); err != nil {
		s.log.Warn("failed to update mood sortable attributes", "error", err)
	}

	s.log.Info("meilisearch indexes initialized", "index", MoodIndex)
}

type meiliMoodDoc struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	Mood       int    `json:"mood"`
	Note       string `json:"note"`
	RecordedAt int64  `json:"recorded_at"`
}

// IndexMoodEntry indexes entries that carry a note; entries without one are skipped.
func (s *meiliSearchService) IndexMoodEntry(_ context.Context, entry *entity.MoodEntry) error {
	if entry.Note == nil || *entry.Note == "" {
		return nil
	}

	doc := meiliMoodDoc{
		ID:         entry.ID.String(),
		UserID:     entry.UserID.String(),
		Mood:       entry.Mood,
		Note:       *entry.Note,
		RecordedAt: entry.RecordedAt.Unix(),
	}

	task, err := s.client.Index(MoodIndex).AddDocuments([]meiliMoodDoc{doc}, strPtr("id"))
	if err != nil {
		return fmt.Errorf("index mood entry %s: %w", entry.ID, err)
	}
	s.log.Debug("indexed mood entry", "entry_id", entry.ID, "task_uid", task.TaskUID)
	return nil
}

func (s *meiliSearchService) SearchNotes(_ context.Context, userID uuid.UUID, query string, limit int) ([]NoteHit, error) {
	raw, err := s.client.Index(MoodIndex).SearchRaw(query, &meilisearch.SearchRequest{
		Filter: userFilter(userID),
		Sort:   []string{"recorded_at:desc"},
		Limit:  int64(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("search mood notes: %w", err)
	}

	var resp struct {
		Hits []NoteHit `json:"hits"`
	}
	if raw != nil {
		if err := json.Unmarshal(*raw, &resp); err != nil {
			return nil, fmt.Errorf("decode mood search response: %w", err)
		}
	}
	if resp.Hits == nil {
		resp.Hits = []NoteHit{}
	}
	return resp.Hits, nil
}

func (s *meiliSearchService) GenerateSearchToken(userID uuid.UUID) (string, error) {
	if s.signingKeyUID == "" || s.signingKey == "" {
		return "", fmt.Errorf("signing key not initialized")
	}

	searchRules := map[string]any{
		MoodIndex: map[string]any{
			"filter": userFilter(userID),
		},
	}

	return s.client.GenerateTenantToken(s.signingKeyUID, searchRules, &meilisearch.TenantTokenOptions{
		APIKey:    s.signingKey,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	})
}

func userFilter(userID uuid.UUID) string {
	return fmt.Sprintf("user_id = '%s'", userID.String())
}

func strPtr(s string) *string {
	return &s
}
