// Package postgres is the durable catalog.Store backend, grounded on the
// teacher's GORM-based pkg/controlplane/store package: one *gorm.DB, thin
// per-entity row types (models.go), and generic helpers (helpers.go) that
// mirror the teacher's getByField/listAll/createWithID style.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/netdoc/netdoc/pkg/catalog"
	"github.com/netdoc/netdoc/pkg/protoerr"
)

// Store is a catalog.Store backed by PostgreSQL via GORM.
type Store struct {
	db *gorm.DB
}

// Open connects to dsn, runs pending migrations, and returns a ready Store.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, protoerr.Internal(err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, protoerr.Internal(err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, protoerr.Internal(err)
	}

	if err := RunMigrations(dsn); err != nil {
		return nil, protoerr.Internal(err)
	}

	return &Store{db: db}, nil
}

var _ catalog.Store = (*Store)(nil)

// ----- Files -----

func (s *Store) CreateFile(ctx context.Context, entry *catalog.FileEntry) error {
	row := fileFromEntry(entry)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return protoerr.AlreadyExists(entry.Name)
		}
		return protoerr.Internal(err)
	}
	return nil
}

func (s *Store) GetFile(ctx context.Context, name string) (*catalog.FileEntry, error) {
	row, err := getByKey[fileRow](s.db, ctx, "name = ?", []any{name}, protoerr.NotFound(name))
	if err != nil {
		return nil, asCoded(err)
	}
	return row.toEntry(), nil
}

func (s *Store) ListFiles(ctx context.Context) ([]*catalog.FileEntry, error) {
	rows, err := listAll[fileRow](s.db, ctx, "", nil)
	if err != nil {
		return nil, protoerr.Internal(err)
	}
	out := make([]*catalog.FileEntry, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toEntry())
	}
	return out, nil
}

func (s *Store) TouchAccessed(ctx context.Context, name string) error {
	res := s.db.WithContext(ctx).Model(&fileRow{}).Where("name = ?", name).
		Update("accessed_at", time.Now().UTC())
	if res.Error != nil {
		return protoerr.Internal(res.Error)
	}
	if res.RowsAffected == 0 {
		return protoerr.NotFound(name)
	}
	return nil
}

func (s *Store) TouchModified(ctx context.Context, name string, counters *catalog.Counters) error {
	now := time.Now().UTC()
	updates := map[string]any{"modified_at": now, "accessed_at": now}
	if counters != nil {
		updates["word_count"] = counters.Words
		updates["char_count"] = counters.Chars
		updates["sentence_count"] = counters.Sentences
	}
	res := s.db.WithContext(ctx).Model(&fileRow{}).Where("name = ?", name).Updates(updates)
	if res.Error != nil {
		return protoerr.Internal(res.Error)
	}
	if res.RowsAffected == 0 {
		return protoerr.NotFound(name)
	}
	return nil
}

func (s *Store) DeleteFile(ctx context.Context, name string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("name = ?", name).Delete(&fileRow{})
		if res.Error != nil {
			return protoerr.Internal(res.Error)
		}
		if res.RowsAffected == 0 {
			return protoerr.NotFound(name)
		}
		if err := tx.Where("file_name = ?", name).Delete(&grantRow{}).Error; err != nil {
			return protoerr.Internal(err)
		}
		if err := tx.Where("file_name = ?", name).Delete(&requestRow{}).Error; err != nil {
			return protoerr.Internal(err)
		}
		if err := tx.Where("file_name = ?", name).Delete(&checkpointRow{}).Error; err != nil {
			return protoerr.Internal(err)
		}
		return nil
	})
}

// ----- Users -----

func (s *Store) RegisterUser(ctx context.Context, name string) error {
	row := userRow{Name: name, RegisteredAt: time.Now().UTC()}
	err := s.db.WithContext(ctx).Clauses(onConflictDoNothing("name")).Create(&row).Error
	if err != nil {
		return protoerr.Internal(err)
	}
	return nil
}

func (s *Store) UserExists(ctx context.Context, name string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&userRow{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return false, protoerr.Internal(err)
	}
	return count > 0, nil
}

// ----- Access grants -----

func (s *Store) UpsertGrant(ctx context.Context, grant *catalog.AccessGrant) error {
	row := grantRow{FileName: grant.FileName, Grantee: grant.Grantee, Perms: int(grant.Perms)}
	err := s.db.WithContext(ctx).Clauses(onConflictUpdatePerms()).Create(&row).Error
	if err != nil {
		return protoerr.Internal(err)
	}
	return nil
}

func (s *Store) RemoveGrant(ctx context.Context, file, grantee string) error {
	err := s.db.WithContext(ctx).
		Where("file_name = ? AND grantee = ?", file, grantee).
		Delete(&grantRow{}).Error
	if err != nil {
		return protoerr.Internal(err)
	}
	return nil
}

func (s *Store) GetGrant(ctx context.Context, file, grantee string) (*catalog.AccessGrant, bool, error) {
	row, err := getByKey[grantRow](s.db, ctx, "file_name = ? AND grantee = ?", []any{file, grantee}, gorm.ErrRecordNotFound)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, protoerr.Internal(err)
	}
	return &catalog.AccessGrant{FileName: row.FileName, Grantee: row.Grantee, Perms: catalog.Perm(row.Perms)}, true, nil
}

func (s *Store) ListGrantsForUser(ctx context.Context, user string) ([]*catalog.AccessGrant, error) {
	rows, err := listAll[grantRow](s.db, ctx, "grantee = ?", []any{user})
	if err != nil {
		return nil, protoerr.Internal(err)
	}
	out := make([]*catalog.AccessGrant, 0, len(rows))
	for _, r := range rows {
		out = append(out, &catalog.AccessGrant{FileName: r.FileName, Grantee: r.Grantee, Perms: catalog.Perm(r.Perms)})
	}
	return out, nil
}

// ----- Access requests -----

func (s *Store) CreateAccessRequest(ctx context.Context, req *catalog.AccessRequest) error {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	row := requestRow{
		ID:            req.ID,
		FileName:      req.FileName,
		Requester:     req.Requester,
		RequestedPerm: int(req.RequestedPerm),
		Status:        string(req.Status),
		RequestedAt:   req.RequestedAt,
	}
	if row.RequestedAt.IsZero() {
		row.RequestedAt = time.Now().UTC()
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return protoerr.Internal(err)
	}
	return nil
}

func (s *Store) ListPendingRequestsForOwner(ctx context.Context, owner string) ([]*catalog.AccessRequest, error) {
	var rows []requestRow
	err := s.db.WithContext(ctx).
		Joins("JOIN files ON files.name = access_requests.file_name").
		Where("files.owner = ? AND access_requests.status = ?", owner, string(catalog.RequestPending)).
		Find(&rows).Error
	if err != nil {
		return nil, protoerr.Internal(err)
	}
	out := make([]*catalog.AccessRequest, 0, len(rows))
	for _, r := range rows {
		out = append(out, &catalog.AccessRequest{
			ID:            r.ID,
			FileName:      r.FileName,
			Requester:     r.Requester,
			RequestedPerm: catalog.Perm(r.RequestedPerm),
			Status:        catalog.RequestStatus(r.Status),
			RequestedAt:   r.RequestedAt,
		})
	}
	return out, nil
}

// ----- Checkpoints -----

func (s *Store) CreateCheckpoint(ctx context.Context, cp *catalog.Checkpoint) error {
	row := checkpointRow{FileName: cp.FileName, Tag: cp.Tag, BlobLocator: cp.BlobLocator, CreatedAt: cp.CreatedAt}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return protoerr.Internal(err)
	}
	return nil
}

func (s *Store) ListCheckpoints(ctx context.Context, file string) ([]*catalog.Checkpoint, error) {
	rows, err := listAll[checkpointRow](s.db, ctx, "file_name = ?", []any{file})
	if err != nil {
		return nil, protoerr.Internal(err)
	}
	out := make([]*catalog.Checkpoint, 0, len(rows))
	for _, r := range rows {
		out = append(out, &catalog.Checkpoint{FileName: r.FileName, Tag: r.Tag, BlobLocator: r.BlobLocator, CreatedAt: r.CreatedAt})
	}
	return out, nil
}

func (s *Store) GetCheckpoint(ctx context.Context, file, tag string) (*catalog.Checkpoint, bool, error) {
	row, err := getByKey[checkpointRow](s.db, ctx, "file_name = ? AND tag = ?", []any{file, tag}, gorm.ErrRecordNotFound)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, protoerr.Internal(err)
	}
	return &catalog.Checkpoint{FileName: row.FileName, Tag: row.Tag, BlobLocator: row.BlobLocator, CreatedAt: row.CreatedAt}, true, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func fileFromEntry(e *catalog.FileEntry) fileRow {
	return fileRow{
		Name:          e.Name,
		Owner:         e.Owner,
		PrimaryNodeID: e.PrimaryNodeID,
		ReplicaNodeID: e.ReplicaNodeID,
		IsFolder:      e.IsFolder,
		CreatedAt:     orNow(e.CreatedAt),
		ModifiedAt:    orNow(e.ModifiedAt),
		AccessedAt:    orNow(e.AccessedAt),
		WordCount:     e.WordCount,
		CharCount:     e.CharCount,
		SentenceCount: e.SentenceCount,
	}
}

func orNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}

func (r *fileRow) toEntry() *catalog.FileEntry {
	return &catalog.FileEntry{
		Name:          r.Name,
		Owner:         r.Owner,
		PrimaryNodeID: r.PrimaryNodeID,
		ReplicaNodeID: r.ReplicaNodeID,
		IsFolder:      r.IsFolder,
		CreatedAt:     r.CreatedAt,
		ModifiedAt:    r.ModifiedAt,
		AccessedAt:    r.AccessedAt,
		WordCount:     r.WordCount,
		CharCount:     r.CharCount,
		SentenceCount: r.SentenceCount,
	}
}

func asCoded(err error) error {
	if _, ok := protoerr.As(err); ok {
		return err
	}
	return protoerr.Internal(err)
}
