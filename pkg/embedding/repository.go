package embedding

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pgvector/pgvector-go"
	"github.com/vidscribe-ai/platform/pkg/common/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type chunkModel struct {
	JobCode    string          `gorm:"primaryKey;column:job_code"`
	ChunkIndex int             `gorm:"primaryKey;column:chunk_index"`
	Text       string          `gorm:"column:text;type:text"`
	Embedding  pgvector.Vector `gorm:"column:embedding;type:vector(768)"`
	Metadata   datatypes.JSON  `gorm:"column:metadata"`
	CreatedAt  time.Time       `gorm:"column:created_at"`
	UpdatedAt  time.Time       `gorm:"column:updated_at"`
}

func (chunkModel) TableName() string { return "transcript_chunks" }

// cursorModel is the singleton watermark row (id = 1).
type cursorModel struct {
	ID            int       `gorm:"primaryKey;column:id"`
	LastUpdatedAt time.Time `gorm:"column:last_updated_at"`
	LastCode      string    `gorm:"column:last_code"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (cursorModel) TableName() string { return "embedding_cursors" }

// ChunkRecord is one embedded slice ready for persistence.
type ChunkRecord struct {
	Index  int
	Text   string
	Vector []float32
}

type SearchResult struct {
	JobCode    string  `gorm:"column:job_code" json:"job_code"`
	ChunkIndex int     `gorm:"column:chunk_index" json:"chunk_index"`
	Text       string  `gorm:"column:text" json:"text"`
	Distance   float64 `gorm:"column:distance" json:"distance"`
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&chunkModel{}, &cursorModel{})
}

// GetCursor reads the watermark, creating the zero-position singleton on
// first use.
func (r *Repository) GetCursor(ctx context.Context) (models.CursorPos, error) {
	row := cursorModel{ID: 1}
	err := r.db.WithContext(ctx).
		Where("id = ?", 1).
		Attrs(cursorModel{LastUpdatedAt: time.Time{}, LastCode: ""}).
		FirstOrCreate(&row).Error
	if err != nil {
		return models.CursorPos{}, err
	}
	return models.CursorPos{LastUpdatedAt: row.LastUpdatedAt, LastCode: row.LastCode}, nil
}

// AdvanceCursor moves the watermark forward. Callers only pass the
// position of a successfully embedded job, so the cursor never skips
// past a failure.
func (r *Repository) AdvanceCursor(ctx context.Context, pos models.CursorPos) error {
	return r.db.WithContext(ctx).Model(&cursorModel{}).
		Where("id = ?", 1).
		Updates(map[string]interface{}{
			"last_updated_at": pos.LastUpdatedAt,
			"last_code":       pos.LastCode,
			"updated_at":      time.Now().UTC(),
		}).Error
}

// UpsertChunks writes one job's chunk rows, idempotent on
// (job_code, chunk_index). Re-embedding after a resume converges on the
// same rows.
func (r *Repository) UpsertChunks(ctx context.Context, jobCode string, chunks []ChunkRecord) error {
	if len(chunks) == 0 {
		return nil
	}
	now := time.Now().UTC()
	rows := make([]chunkModel, 0, len(chunks))
	for _, c := range chunks {
		meta, _ := json.Marshal(map[string]interface{}{
			"runes": len([]rune(c.Text)),
		})
		rows = append(rows, chunkModel{
			JobCode:    jobCode,
			ChunkIndex: c.Index,
			Text:       c.Text,
			Embedding:  pgvector.NewVector(c.Vector),
			Metadata:   datatypes.JSON(meta),
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "job_code"}, {Name: "chunk_index"}},
		DoUpdates: clause.AssignmentColumns([]string{"text", "embedding", "metadata", "updated_at"}),
	}).Create(&rows).Error
}

// SearchChunks is the k-nearest read query for the retrieval
// collaborators, with an optional exclusion set of job codes.
func (r *Repository) SearchChunks(ctx context.Context, vector []float32, k int, excludeCodes []string) ([]SearchResult, error) {
	if k <= 0 || k > 100 {
		k = 10
	}
	embedding := pgvector.NewVector(vector)

	var results []SearchResult
	query := `
        SELECT job_code, chunk_index, text, embedding <-> ? AS distance
        FROM transcript_chunks`
	args := []interface{}{embedding}
	if len(excludeCodes) > 0 {
		query += ` WHERE job_code NOT IN ?`
		args = append(args, excludeCodes)
	}
	query += `
        ORDER BY embedding <-> ?
        LIMIT ?`
	args = append(args, embedding, k)

	err := r.db.WithContext(ctx).Raw(query, args...).Scan(&results).Error
	return results, err
}
