package catalog_repo

import (
	"context"
	"testing"

	appctx "fleettrack/internal/core/context"
	"fleettrack/internal/domain/filter"
)

func testRepo() *BaseCatalogRepo[any] {
	return NewBaseCatalogRepo[any](nil, "test_table", []string{"id", "col1"}, func() any { return nil })
}

func scopedCtx(orgID string) context.Context {
	return appctx.WithOrgID(context.Background(), orgID)
}

func TestApplyAdvancedFilters_Operators(t *testing.T) {
	repo := testRepo()

	tests := []struct {
		name     string
		item     filter.Item
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "GreaterOrEqual",
			item:     filter.Item{Field: "col1", Operator: filter.GreaterOrEqual, Value: 10},
			wantSQL:  "SELECT id, col1 FROM test_table WHERE org_id = $1 AND col1 >= $2",
			wantArgs: []any{"org-1", 10},
		},
		{
			name:     "LessOrEqual",
			item:     filter.Item{Field: "col1", Operator: filter.LessOrEqual, Value: 5},
			wantSQL:  "SELECT id, col1 FROM test_table WHERE org_id = $1 AND col1 <= $2",
			wantArgs: []any{"org-1", 5},
		},
		{
			name:     "NotEqual",
			item:     filter.Item{Field: "col1", Operator: filter.NotEqual, Value: "x"},
			wantSQL:  "SELECT id, col1 FROM test_table WHERE org_id = $1 AND col1 <> $2",
			wantArgs: []any{"org-1", "x"},
		},
		{
			name:     "Contains",
			item:     filter.Item{Field: "col1", Operator: filter.Contains, Value: "abc"},
			wantSQL:  "SELECT id, col1 FROM test_table WHERE org_id = $1 AND col1 ILIKE $2",
			wantArgs: []any{"org-1", "%abc%"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			baseQ := repo.baseSelect(scopedCtx("org-1"))
			q, err := repo.applyAdvancedFilters(baseQ, []filter.Item{tt.item})
			if err != nil {
				t.Fatalf("applyAdvancedFilters failed: %v", err)
			}

			sql, args, err := q.ToSql()
			if err != nil {
				t.Fatalf("ToSql failed: %v", err)
			}

			if sql != tt.wantSQL {
				t.Errorf("SQL mismatch\nwant: %s\ngot:  %s", tt.wantSQL, sql)
			}
			if len(args) != len(tt.wantArgs) {
				t.Fatalf("Args count mismatch\nwant: %d\ngot:  %d", len(tt.wantArgs), len(args))
			}
			for i := range args {
				if args[i] != tt.wantArgs[i] {
					t.Errorf("Arg %d mismatch\nwant: %v\ngot:  %v", i, tt.wantArgs[i], args[i])
				}
			}
		})
	}
}

func TestApplyAdvancedFilters_RejectsUnknownColumn(t *testing.T) {
	repo := testRepo()

	baseQ := repo.baseSelect(scopedCtx("org-1"))
	_, err := repo.applyAdvancedFilters(baseQ, []filter.Item{
		{Field: "col1; DROP TABLE test_table", Operator: filter.Equal, Value: 1},
	})
	if err == nil {
		t.Fatal("expected error for column outside whitelist")
	}
}

func TestBaseSelect_OrgScoping(t *testing.T) {
	repo := testRepo()

	sql, args, err := repo.baseSelect(scopedCtx("org-42")).ToSql()
	if err != nil {
		t.Fatalf("ToSql failed: %v", err)
	}
	if sql != "SELECT id, col1 FROM test_table WHERE org_id = $1" {
		t.Errorf("unexpected SQL: %s", sql)
	}
	if len(args) != 1 || args[0] != "org-42" {
		t.Errorf("unexpected args: %v", args)
	}

	unscoped := NewUnscopedCatalogRepo[any](nil, "test_table", []string{"id", "col1"}, func() any { return nil })
	sql, args, err = unscoped.baseSelect(context.Background()).ToSql()
	if err != nil {
		t.Fatalf("ToSql failed: %v", err)
	}
	if sql != "SELECT id, col1 FROM test_table" {
		t.Errorf("unexpected SQL: %s", sql)
	}
	if len(args) != 0 {
		t.Errorf("unexpected args: %v", args)
	}
}

func TestParseOrderBy(t *testing.T) {
	repo := testRepo()

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "", want: "name ASC"},
		{in: "col1", want: "col1 ASC"},
		{in: "-col1", want: "col1 DESC"},
		{in: "+created_at", want: "created_at ASC"},
		{in: "no_such_col", wantErr: true},
		{in: "-", wantErr: true},
	}

	for _, tt := range tests {
		got, err := repo.parseOrderBy(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseOrderBy(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseOrderBy(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseOrderBy(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
