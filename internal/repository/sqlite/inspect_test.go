package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/burakyalinat/portfolio/internal/model"
)

func findTable(dumps []TableDump, name string) *TableDump {
	for i := range dumps {
		if dumps[i].Name == name {
			return &dumps[i]
		}
	}
	return nil
}

func TestInspect_ListsTablesColumnsAndRows(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.CreateProject(ctx, &model.Project{
		Title: "NLP", Description: "sentiment", GitHubLink: "https://github.com/x/nlp",
	}))

	dumps, err := db.Inspect(ctx)
	require.NoError(t, err)

	projects := findTable(dumps, "projects")
	require.NotNil(t, projects, "projects table missing from dump")
	require.NotNil(t, findTable(dumps, "admins"), "admins table missing from dump")

	names := make([]string, 0, len(projects.Columns))
	for _, c := range projects.Columns {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"id", "title", "description", "github_link", "image_url", "created_at", "updated_at"}, names)
	assert.Equal(t, "INTEGER", projects.Columns[0].Type)

	require.Len(t, projects.Rows, 1)
	assert.Equal(t, "1", projects.Rows[0][0])
	assert.Equal(t, "NLP", projects.Rows[0][1])
	assert.Equal(t, "", projects.Rows[0][4])
}

func TestInspect_EmptyTable(t *testing.T) {
	db := newTestDB(t)

	dumps, err := db.Inspect(context.Background())
	require.NoError(t, err)

	admins := findTable(dumps, "admins")
	require.NotNil(t, admins)
	assert.Empty(t, admins.Rows)
}

func TestOpenReadOnly_RejectsWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.db")
	rw, err := New(path)
	require.NoError(t, err)
	require.NoError(t, rw.CreateProject(context.Background(), &model.Project{Title: "a", Description: "b"}))
	require.NoError(t, rw.Close())

	ro, err := OpenReadOnly(path)
	require.NoError(t, err)
	defer ro.Close()

	n, err := ro.CountProjects(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	err = ro.CreateProject(context.Background(), &model.Project{Title: "c", Description: "d"})
	assert.Error(t, err, "writes through a read-only handle must fail")
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, `"projects"`, quoteIdent("projects"))
	assert.Equal(t, `"we""ird"`, quoteIdent(`we"ird`))
}
