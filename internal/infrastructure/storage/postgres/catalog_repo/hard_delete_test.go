package catalog_repo

import (
	"testing"

	"github.com/Masterminds/squirrel"

	"fleettrack/internal/core/id"
)

func TestBaseCatalogRepo_Delete_SQL(t *testing.T) {
	repo := NewBaseCatalogRepo[any](nil, "test_table", []string{"id", "name"}, func() any { return nil })
	entityID := id.New()

	q := repo.scopeDelete(scopedCtx("org-7"), repo.Builder().
		Delete(repo.tableName).
		Where(squirrel.Eq{"id": entityID}))

	sql, args, err := q.ToSql()
	if err != nil {
		t.Fatalf("ToSql failed: %v", err)
	}

	wantSQL := "DELETE FROM test_table WHERE id = $1 AND org_id = $2"
	if sql != wantSQL {
		t.Errorf("SQL mismatch\nwant: %s\ngot:  %s", wantSQL, sql)
	}
	if len(args) != 2 || args[0] != entityID || args[1] != "org-7" {
		t.Errorf("Args mismatch\nwant: [%v org-7]\ngot:  %v", entityID, args)
	}
}

func TestBaseCatalogRepo_SetDeletionMark_SQL(t *testing.T) {
	repo := NewBaseCatalogRepo[any](nil, "test_table", []string{"id", "name"}, func() any { return nil })
	entityID := id.New()

	q := repo.scopeUpdate(scopedCtx("org-7"), repo.Builder().
		Update(repo.tableName).
		Set("deletion_mark", true).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": entityID}))

	sql, _, err := q.ToSql()
	if err != nil {
		t.Fatalf("ToSql failed: %v", err)
	}

	wantSQL := "UPDATE test_table SET deletion_mark = $1, version = version + 1 WHERE id = $2 AND org_id = $3"
	if sql != wantSQL {
		t.Errorf("SQL mismatch\nwant: %s\ngot:  %s", wantSQL, sql)
	}
}
