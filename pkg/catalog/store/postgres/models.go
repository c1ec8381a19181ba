package postgres

import "time"

// GORM row models for the catalog schema (pkg/catalog/store/postgres/migrations).
// These are private to this package; callers only ever see catalog.* types,
// translated at the Store boundary (grounded on the teacher's
// pkg/controlplane/models + pkg/controlplane/store split).

type fileRow struct {
	Name          string `gorm:"column:name;primaryKey"`
	Owner         string `gorm:"column:owner;index"`
	PrimaryNodeID uint64 `gorm:"column:primary_node_id"`
	ReplicaNodeID *uint64 `gorm:"column:replica_node_id"`
	IsFolder      bool      `gorm:"column:is_folder"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	ModifiedAt    time.Time `gorm:"column:modified_at"`
	AccessedAt    time.Time `gorm:"column:accessed_at"`
	WordCount     int       `gorm:"column:word_count"`
	CharCount     int       `gorm:"column:char_count"`
	SentenceCount int       `gorm:"column:sentence_count"`
}

func (fileRow) TableName() string { return "files" }

type userRow struct {
	Name         string    `gorm:"column:name;primaryKey"`
	RegisteredAt time.Time `gorm:"column:registered_at"`
}

func (userRow) TableName() string { return "users" }

type grantRow struct {
	FileName string `gorm:"column:file_name;primaryKey"`
	Grantee  string `gorm:"column:grantee;primaryKey"`
	Perms    int    `gorm:"column:perms"`
}

func (grantRow) TableName() string { return "access_grants" }

type requestRow struct {
	ID            string    `gorm:"column:id;primaryKey"`
	FileName      string    `gorm:"column:file_name;index"`
	Requester     string    `gorm:"column:requester"`
	RequestedPerm int       `gorm:"column:requested_perm"`
	Status        string    `gorm:"column:status"`
	RequestedAt   time.Time `gorm:"column:requested_at"`
}

func (requestRow) TableName() string { return "access_requests" }

type checkpointRow struct {
	FileName    string    `gorm:"column:file_name;primaryKey"`
	Tag         string    `gorm:"column:tag;primaryKey"`
	BlobLocator string    `gorm:"column:blob_locator"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (checkpointRow) TableName() string { return "checkpoints" }
