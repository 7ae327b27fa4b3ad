package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/vaultchat-labs/vaultchat-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/vaultchat-labs/vaultchat-cli/internal/core/domain"
	"github.com/vaultchat-labs/vaultchat-cli/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage backing both the vector store
// and the conversation store through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.vaultchat/data/vaultchat.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".vaultchat", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "vaultchat.db")

	// WAL mode for better concurrency between the chat loop and
	// background ingestion.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// VectorStore returns a VectorStore interface backed by this store.
func (s *Store) VectorStore() driven.VectorStore {
	return &vectorStore{store: s}
}

// ConversationStore returns a ConversationStore interface backed by this store.
func (s *Store) ConversationStore() driven.ConversationStore {
	return &conversationStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}

		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Vector Store ====================

// vectorStore implements driven.VectorStore.
type vectorStore struct {
	store *Store
}

var _ driven.VectorStore = (*vectorStore)(nil)

// UpsertSource inserts a source by name or returns the existing id.
func (s *vectorStore) UpsertSource(ctx context.Context, name string) (int64, error) {
	res, err := s.store.db.ExecContext(ctx, `
		INSERT INTO sources (name, added_at) VALUES (?, ?)
		ON CONFLICT(name) DO NOTHING
	`, name, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("inserting source: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n > 0 {
		id, err := res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("reading source id: %w", err)
		}
		return id, nil
	}

	var id int64
	row := s.store.db.QueryRowContext(ctx, "SELECT id FROM sources WHERE name = ?", name)
	if err := row.Scan(&id); err != nil {
		return 0, fmt.Errorf("looking up source: %w", err)
	}
	return id, nil
}

// AddChunks bulk-inserts chunks for a source in one transaction.
func (s *vectorStore) AddChunks(ctx context.Context, sourceID int64, chunks []domain.Chunk) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (source_id, ord, content, embedding)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing chunk insert: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		blob := float32SliceToBytes(chunk.Embedding)
		if _, err := stmt.ExecContext(ctx, sourceID, chunk.Ord, chunk.Text, blob); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("chunk order %d for source %d: %w", chunk.Ord, sourceID, domain.ErrDuplicateChunk)
			}
			return fmt.Errorf("inserting chunk %d: %w", chunk.Ord, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing chunks: %w", err)
	}
	return nil
}

// ListSources returns all sources with their chunk counts.
func (s *vectorStore) ListSources(ctx context.Context) ([]domain.SourceInfo, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT s.id, s.name, s.added_at, COUNT(c.id)
		FROM sources s
		LEFT JOIN chunks c ON c.source_id = s.id
		GROUP BY s.id
		ORDER BY s.id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying sources: %w", err)
	}
	defer rows.Close()

	var sources []domain.SourceInfo //nolint:prealloc // size unknown from query
	for rows.Next() {
		var info domain.SourceInfo
		var addedAt sql.NullTime
		if err := rows.Scan(&info.ID, &info.Name, &addedAt, &info.ChunkCount); err != nil {
			return nil, fmt.Errorf("scanning source: %w", err)
		}
		if addedAt.Valid {
			info.AddedAt = addedAt.Time
		}
		sources = append(sources, info)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sources: %w", err)
	}
	return sources, nil
}

// GetSourceByName retrieves a source by its unique name.
func (s *vectorStore) GetSourceByName(ctx context.Context, name string) (*domain.Source, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, name, added_at FROM sources WHERE name = ?
	`, name)

	var source domain.Source
	var addedAt sql.NullTime
	if err := row.Scan(&source.ID, &source.Name, &addedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning source: %w", err)
	}
	if addedAt.Valid {
		source.AddedAt = addedAt.Time
	}
	return &source, nil
}

// DeleteSource removes the source and all its chunks atomically. Chunks
// go with it via ON DELETE CASCADE.
func (s *vectorStore) DeleteSource(ctx context.Context, id int64) (bool, error) {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM sources WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("deleting source: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reading delete result: %w", err)
	}
	return n > 0, nil
}

// AllChunks returns every stored chunk joined with its source name, in
// insertion order.
func (s *vectorStore) AllChunks(ctx context.Context) ([]driven.StoredChunk, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT c.id, c.source_id, c.ord, c.content, c.embedding, s.name
		FROM chunks c
		JOIN sources s ON s.id = c.source_id
		ORDER BY c.id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []driven.StoredChunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		var sc driven.StoredChunk
		var blob []byte
		if err := rows.Scan(&sc.Chunk.ID, &sc.Chunk.SourceID, &sc.Chunk.Ord,
			&sc.Chunk.Text, &blob, &sc.SourceName); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		sc.Chunk.Embedding = bytesToFloat32Slice(blob)
		chunks = append(chunks, sc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	return chunks, nil
}

// Close is a no-op; the owning Store manages the connection.
func (s *vectorStore) Close() error {
	return nil
}

// ==================== Conversation Store ====================

// conversationStore implements driven.ConversationStore.
type conversationStore struct {
	store *Store
}

var _ driven.ConversationStore = (*conversationStore)(nil)

// Create stores a new conversation.
func (s *conversationStore) Create(ctx context.Context, conv domain.Conversation) error {
	var budget sql.NullFloat64
	if conv.Meta.BudgetUSD != nil {
		budget = sql.NullFloat64{Float64: *conv.Meta.BudgetUSD, Valid: true}
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO conversations (id, title, model, budget_usd, spent_usd, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, conv.ID, conv.Title, conv.Model, budget, conv.Meta.SpentUSD, conv.CreatedAt, conv.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("conversation %s: %w", conv.ID, domain.ErrAlreadyExists)
		}
		return fmt.Errorf("creating conversation: %w", err)
	}
	return nil
}

// Get retrieves a conversation with its full message history.
func (s *conversationStore) Get(ctx context.Context, id string) (*domain.Conversation, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, title, model, budget_usd, spent_usd, created_at, updated_at
		FROM conversations WHERE id = ?
	`, id)

	conv, err := scanConversation(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning conversation: %w", err)
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, role, content, model, created_at
		FROM messages WHERE conversation_id = ?
		ORDER BY seq
	`, id)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var msg domain.Message
		var createdAt sql.NullTime
		if err := rows.Scan(&msg.ID, &msg.Role, &msg.Content, &msg.Model, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		if createdAt.Valid {
			msg.CreatedAt = createdAt.Time
		}
		conv.Messages = append(conv.Messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating messages: %w", err)
	}
	return conv, nil
}

// List returns all conversations, newest first, without messages.
func (s *conversationStore) List(ctx context.Context) ([]domain.Conversation, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, title, model, budget_usd, spent_usd, created_at, updated_at
		FROM conversations
		ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying conversations: %w", err)
	}
	defer rows.Close()

	var convs []domain.Conversation //nolint:prealloc // size unknown from query
	for rows.Next() {
		conv, err := scanConversation(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning conversation: %w", err)
		}
		convs = append(convs, *conv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating conversations: %w", err)
	}
	return convs, nil
}

// AppendMessage appends a message to the conversation history.
func (s *conversationStore) AppendMessage(ctx context.Context, conversationID string, msg domain.Message) error {
	res, err := s.store.db.ExecContext(ctx, `
		INSERT INTO messages (id, conversation_id, role, content, model, created_at)
		SELECT ?, id, ?, ?, ?, ? FROM conversations WHERE id = ?
	`, msg.ID, msg.Role, msg.Content, msg.Model, msg.CreatedAt, conversationID)
	if err != nil {
		return fmt.Errorf("inserting message: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading insert result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("conversation %s: %w", conversationID, domain.ErrNotFound)
	}

	if _, err := s.store.db.ExecContext(ctx,
		"UPDATE conversations SET updated_at = ? WHERE id = ?",
		time.Now().UTC(), conversationID); err != nil {
		return fmt.Errorf("touching conversation: %w", err)
	}
	return nil
}

// AddSpend atomically adds amount to the conversation's accumulated
// spend. The increment happens inside SQLite, so concurrent writers
// never lose an update.
func (s *conversationStore) AddSpend(ctx context.Context, conversationID string, amount float64) error {
	res, err := s.store.db.ExecContext(ctx, `
		UPDATE conversations SET spent_usd = spent_usd + ?, updated_at = ? WHERE id = ?
	`, amount, time.Now().UTC(), conversationID)
	if err != nil {
		return fmt.Errorf("adding spend: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading update result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("conversation %s: %w", conversationID, domain.ErrNotFound)
	}
	return nil
}

// SetBudget sets or clears (nil) the conversation budget.
func (s *conversationStore) SetBudget(ctx context.Context, conversationID string, budgetUSD *float64) error {
	var budget sql.NullFloat64
	if budgetUSD != nil {
		budget = sql.NullFloat64{Float64: *budgetUSD, Valid: true}
	}

	res, err := s.store.db.ExecContext(ctx,
		"UPDATE conversations SET budget_usd = ?, updated_at = ? WHERE id = ?",
		budget, time.Now().UTC(), conversationID)
	if err != nil {
		return fmt.Errorf("setting budget: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading update result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("conversation %s: %w", conversationID, domain.ErrNotFound)
	}
	return nil
}

// Delete removes a conversation; its messages go with it via
// ON DELETE CASCADE.
func (s *conversationStore) Delete(ctx context.Context, id string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM conversations WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting conversation: %w", err)
	}
	return nil
}

// ==================== Helpers ====================

// scanConversation reads one conversation row, sans messages.
func scanConversation(scan func(dest ...any) error) (*domain.Conversation, error) {
	var conv domain.Conversation
	var budget sql.NullFloat64
	var createdAt, updatedAt sql.NullTime
	if err := scan(&conv.ID, &conv.Title, &conv.Model, &budget,
		&conv.Meta.SpentUSD, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if budget.Valid {
		b := budget.Float64
		conv.Meta.BudgetUSD = &b
	}
	if createdAt.Valid {
		conv.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		conv.UpdatedAt = updatedAt.Time
	}
	return &conv, nil
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint
// failure.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
