package persist

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"

	"github.com/petgo/petgo/internal/world"
)

// ErrChecksum is returned when a stored save blob fails integrity
// verification on load.
var ErrChecksum = errors.New("save checksum mismatch")

// SaveRepo stores full simulation-state snapshots as zstd-compressed JSON
// blobs with a BLAKE2b-256 checksum, keeping a bounded history. It is the
// engine's persistence boundary.
type SaveRepo struct {
	db   *DB
	enc  *zstd.Encoder
	dec  *zstd.Decoder
	keep int
	log  *zap.Logger
}

func NewSaveRepo(db *DB, keep int, log *zap.Logger) (*SaveRepo, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}
	if keep < 1 {
		keep = 1
	}
	return &SaveRepo{db: db, enc: enc, dec: dec, keep: keep, log: log}, nil
}

// Save writes one snapshot row and prunes history beyond the retention
// bound.
func (r *SaveRepo) Save(ctx context.Context, st *world.State) error {
	body, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	comp := r.enc.EncodeAll(body, nil)
	sum := blake2b.Sum256(comp)

	if _, err := r.db.SQL.ExecContext(ctx,
		`INSERT INTO saves (created_at, tick_count, checksum, body) VALUES (?, ?, ?, ?)`,
		time.Now().Unix(), st.World.TickCount, sum[:], comp,
	); err != nil {
		return fmt.Errorf("insert save: %w", err)
	}

	if _, err := r.db.SQL.ExecContext(ctx,
		`DELETE FROM saves WHERE id NOT IN (SELECT id FROM saves ORDER BY id DESC LIMIT ?)`,
		r.keep,
	); err != nil {
		return fmt.Errorf("prune saves: %w", err)
	}
	return nil
}

// Load returns the most recent snapshot, or (nil, nil) on first run. The
// stored row's wall-clock timestamp overrides the in-blob save time: the
// blob is written before the save completes, and offline reconciliation
// needs the moment the row actually landed.
func (r *SaveRepo) Load(ctx context.Context) (*world.State, error) {
	var (
		createdAt int64
		sum       []byte
		comp      []byte
	)
	err := r.db.SQL.QueryRowContext(ctx,
		`SELECT created_at, checksum, body FROM saves ORDER BY id DESC LIMIT 1`,
	).Scan(&createdAt, &sum, &comp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query save: %w", err)
	}

	want := blake2b.Sum256(comp)
	if !bytes.Equal(want[:], sum) {
		return nil, ErrChecksum
	}

	body, err := r.dec.DecodeAll(comp, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress save: %w", err)
	}
	st := world.NewState()
	if err := json.Unmarshal(body, st); err != nil {
		return nil, fmt.Errorf("unmarshal state: %w", err)
	}
	st.Save.LastSavedUnix = createdAt
	return st, nil
}
