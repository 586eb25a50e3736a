package tree

import (
	"context"
	"time"

	"github.com/agubarev/orgtree/pkg/database"
	"github.com/gocraft/dbr/v2"
	"github.com/pkg/errors"
)

const sqlTable = "tree_node"

const sqlSchema = `CREATE TABLE IF NOT EXISTS tree_node (
	entity     VARCHAR(16)  NOT NULL,
	id         CHAR(26)     NOT NULL,
	parent_id  VARCHAR(26)  NOT NULL DEFAULT '',
	kind       VARCHAR(16)  NOT NULL,
	name       VARCHAR(200) NOT NULL,
	sort_order INTEGER      NOT NULL DEFAULT 0,
	status     VARCHAR(16)  NOT NULL,
	visible    BOOLEAN      NOT NULL DEFAULT 1,
	remark     VARCHAR(500) NOT NULL DEFAULT '',
	path       VARCHAR(255) NOT NULL DEFAULT '',
	component  VARCHAR(255) NOT NULL DEFAULT '',
	icon       VARCHAR(64)  NOT NULL DEFAULT '',
	permission VARCHAR(128) NOT NULL DEFAULT '',
	leader     VARCHAR(64)  NOT NULL DEFAULT '',
	phone      VARCHAR(32)  NOT NULL DEFAULT '',
	email      VARCHAR(128) NOT NULL DEFAULT '',
	dict_type  VARCHAR(100) NOT NULL DEFAULT '',
	dict_value VARCHAR(100) NOT NULL DEFAULT '',
	is_default BOOLEAN      NOT NULL DEFAULT 0,
	css_class  VARCHAR(100) NOT NULL DEFAULT '',
	code       VARCHAR(64)  NOT NULL DEFAULT '',
	user_count INTEGER      NOT NULL DEFAULT 0,
	version    INTEGER      NOT NULL DEFAULT 1,
	seq        BIGINT       NOT NULL DEFAULT 0,
	created_at BIGINT       NOT NULL,
	updated_at BIGINT       NOT NULL,
	PRIMARY KEY (entity, id)
)`

// sqlRow is the column layout of a stored record, timestamps are
// kept as unix nanoseconds
type sqlRow struct {
	Entity    string `db:"entity"`
	ID        string `db:"id"`
	ParentID  string `db:"parent_id"`
	Kind      string `db:"kind"`
	Name      string `db:"name"`
	SortOrder int    `db:"sort_order"`
	Status    string `db:"status"`
	Visible   bool   `db:"visible"`
	Remark    string `db:"remark"`
	Path      string `db:"path"`
	Component string `db:"component"`
	Icon      string `db:"icon"`
	Perm      string `db:"permission"`
	Leader    string `db:"leader"`
	Phone     string `db:"phone"`
	Email     string `db:"email"`
	DictType  string `db:"dict_type"`
	DictValue string `db:"dict_value"`
	IsDefault bool   `db:"is_default"`
	CSSClass  string `db:"css_class"`
	Code      string `db:"code"`
	UserCount int    `db:"user_count"`
	Version   uint32 `db:"version"`
	Seq       uint64 `db:"seq"`
	CreatedAt int64  `db:"created_at"`
	UpdatedAt int64  `db:"updated_at"`
}

var sqlColumns = []string{
	"entity", "id", "parent_id", "kind", "name", "sort_order", "status",
	"visible", "remark", "path", "component", "icon", "permission",
	"leader", "phone", "email", "dict_type", "dict_value", "is_default",
	"css_class", "code", "user_count", "version", "seq", "created_at",
	"updated_at",
}

func rowOf(r Record) sqlRow {
	return sqlRow{
		Entity:     string(r.Entity),
		ID:         r.ID,
		ParentID:   r.ParentID,
		Kind:       r.Kind.String(),
		Name:       r.Name,
		SortOrder:  r.SortOrder,
		Status:     string(r.Status),
		Visible:    r.Visible,
		Remark:     r.Remark,
		Path:       r.Path,
		Component:  r.Component,
		Icon:       r.Icon,
		Perm:       r.Permission,
		Leader:     r.Leader,
		Phone:      r.Phone,
		Email:      r.Email,
		DictType:   r.Type,
		DictValue:  r.Value,
		IsDefault:  r.IsDefault,
		CSSClass:   r.CSSClass,
		Code:       r.Code,
		UserCount:  r.UserCount,
		Version:    r.Version,
		Seq:        r.Seq,
		CreatedAt:  r.CreatedAt.UnixNano(),
		UpdatedAt:  r.UpdatedAt.UnixNano(),
	}
}

func (row sqlRow) record() (Record, error) {
	k, err := ParseKind(row.Kind)
	if err != nil {
		return Record{}, errors.Wrapf(err, "row %s", row.ID)
	}

	r := Record{
		Entity:     Entity(row.Entity),
		ID:         row.ID,
		ParentID:   row.ParentID,
		Kind:       k,
		Name:       row.Name,
		SortOrder:  row.SortOrder,
		Status:     Status(row.Status),
		Visible:    row.Visible,
		Remark:     row.Remark,
		Attributes: Attributes{
			Path:       row.Path,
			Component:  row.Component,
			Icon:       row.Icon,
			Permission: row.Perm,
			Leader:     row.Leader,
			Phone:      row.Phone,
			Email:      row.Email,
			Type:       row.DictType,
			Value:      row.DictValue,
			IsDefault:  row.IsDefault,
			CSSClass:   row.CSSClass,
			Code:       row.Code,
			UserCount:  row.UserCount,
		},
		Version:    row.Version,
		Seq:        row.Seq,
		CreatedAt:  time.Unix(0, row.CreatedAt).UTC(),
		UpdatedAt:  time.Unix(0, row.UpdatedAt).UTC(),
	}

	return r, nil
}

// SQLStore keeps records in a single table through dbr,
// works with both mysql and sqlite
type SQLStore struct {
	db *dbr.Connection
}

// NewSQLStore returns a tree store with a sql database used as a backend
func NewSQLStore(db *dbr.Connection) (*SQLStore, error) {
	if db == nil {
		return nil, errors.New("database is nil")
	}

	return &SQLStore{db}, nil
}

// Init creates the table unless it exists
func (s *SQLStore) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqlSchema); err != nil {
		return errors.Wrap(err, "failed to create tree table")
	}

	return nil
}

// FetchAll returns records ordered by seq
func (s *SQLStore) FetchAll(ctx context.Context, e Entity) ([]Record, error) {
	rows := make([]sqlRow, 0)

	_, err := s.db.NewSession(nil).
		Select(sqlColumns...).
		From(sqlTable).
		Where("entity = ?", string(e)).
		OrderAsc("seq").
		OrderAsc("id").
		LoadContext(ctx, &rows)

	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch %s records", e)
	}

	rs := make([]Record, 0, len(rows))
	for _, row := range rows {
		r, err := row.record()
		if err != nil {
			return nil, err
		}

		rs = append(rs, r)
	}

	return rs, nil
}

func (s *SQLStore) Create(ctx context.Context, r Record) error {
	if r.ID == "" {
		return ErrZeroID
	}

	row := rowOf(r)

	_, err := s.db.NewSession(nil).
		InsertInto(sqlTable).
		Columns(sqlColumns...).
		Record(&row).
		ExecContext(ctx)

	if err != nil {
		if database.IsDuplicate(err) {
			return errors.Wrapf(ErrRecordExists, "%s/%s", r.Entity, r.ID)
		}

		return errors.Wrapf(err, "failed to insert %s/%s", r.Entity, r.ID)
	}

	return nil
}

func (s *SQLStore) Update(ctx context.Context, r Record) error {
	row := rowOf(r)

	updates := map[string]interface{}{
		"parent_id":  row.ParentID,
		"kind":       row.Kind,
		"name":       row.Name,
		"sort_order": row.SortOrder,
		"status":     row.Status,
		"visible":    row.Visible,
		"remark":     row.Remark,
		"path":       row.Path,
		"component":  row.Component,
		"icon":       row.Icon,
		"permission": row.Perm,
		"leader":     row.Leader,
		"phone":      row.Phone,
		"email":      row.Email,
		"dict_type":  row.DictType,
		"dict_value": row.DictValue,
		"is_default": row.IsDefault,
		"css_class":  row.CSSClass,
		"code":       row.Code,
		"user_count": row.UserCount,
		"version":    row.Version,
		"updated_at": row.UpdatedAt,
	}

	result, err := s.db.NewSession(nil).
		Update(sqlTable).
		SetMap(updates).
		Where("entity = ? AND id = ?", row.Entity, row.ID).
		ExecContext(ctx)

	if err != nil {
		return errors.Wrapf(err, "failed to update %s/%s", r.Entity, r.ID)
	}

	return expectOneRow(result, r.Entity, r.ID)
}

func (s *SQLStore) Delete(ctx context.Context, e Entity, id string) error {
	result, err := s.db.NewSession(nil).
		DeleteFrom(sqlTable).
		Where("entity = ? AND id = ?", string(e), id).
		ExecContext(ctx)

	if err != nil {
		return errors.Wrapf(err, "failed to delete %s/%s", e, id)
	}

	return expectOneRow(result, e, id)
}

func expectOneRow(result interface{ RowsAffected() (int64, error) }, e Entity, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to obtain affected rows")
	}

	if n == 0 {
		return errors.Wrapf(ErrRecordNotFound, "%s/%s", e, id)
	}

	return nil
}
