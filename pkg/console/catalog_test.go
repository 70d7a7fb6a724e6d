package console

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func catalogBackend(t *testing.T, tree []Permission, hits *atomic.Int64) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/permission/tree", func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"code": 200, "message": "success", "data": tree})
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func sampleTree() []Permission {
	return []Permission{
		{ID: 1, Name: "系统管理", Code: "system", Type: PermissionMenu, SortOrder: 1, Status: 1, Children: []Permission{
			{ID: 3, Name: "用户管理", Code: "user:view", Type: PermissionMenu, ParentID: 1, SortOrder: 2, Status: 1, Children: []Permission{
				{ID: 5, Name: "新增用户", Code: "user:create", Type: PermissionButton, ParentID: 3, SortOrder: 1, Status: 1},
			}},
			{ID: 2, Name: "角色管理", Code: "role:view", Type: PermissionMenu, ParentID: 1, SortOrder: 1, Status: 1},
		}},
		{ID: 9, Name: "孤儿节点", Code: "orphan", Type: PermissionMenu, ParentID: 404, SortOrder: 9, Status: 1},
	}
}

func loadedCatalog(t *testing.T) *Catalog {
	t.Helper()
	server := catalogBackend(t, sampleTree(), nil)
	catalog := NewCatalog(NewClient(server.URL, nil))
	_, err := catalog.LoadTree(context.Background())
	require.NoError(t, err)
	return catalog
}

func TestChildrenOrderedBySortOrder(t *testing.T) {
	catalog := loadedCatalog(t)

	children := catalog.ChildrenOf(1)
	require.Len(t, children, 2)
	require.Equal(t, "role:view", children[0].Code)
	require.Equal(t, "user:view", children[1].Code)
}

func TestFindByCode(t *testing.T) {
	catalog := loadedCatalog(t)

	node, ok := catalog.FindByCode("user:create")
	require.True(t, ok)
	require.Equal(t, int64(5), node.ID)

	_, ok = catalog.FindByCode("nope")
	require.False(t, ok)
}

func TestIsDescendant(t *testing.T) {
	catalog := loadedCatalog(t)

	require.True(t, catalog.IsDescendant(1, 5))
	require.True(t, catalog.IsDescendant(3, 5))
	require.False(t, catalog.IsDescendant(5, 3))
	require.False(t, catalog.IsDescendant(3, 3), "a node is not its own descendant")
	require.False(t, catalog.IsDescendant(1, 9))
}

func TestOrphanFlaggedInvalidButAddressable(t *testing.T) {
	catalog := loadedCatalog(t)

	require.True(t, catalog.Invalid(9))
	require.False(t, catalog.Invalid(3))
	node, ok := catalog.FindByCode("orphan")
	require.True(t, ok)
	require.Equal(t, int64(9), node.ID)
	// Promoted to the top level.
	roots := catalog.ChildrenOf(0)
	require.Len(t, roots, 2)
}

func TestFilterByNameKeepsAncestorChain(t *testing.T) {
	catalog := loadedCatalog(t)

	result := catalog.FilterByName("新增")
	require.Len(t, result, 1)
	require.Equal(t, "system", result[0].Code)
	require.Len(t, result[0].Children, 1)
	require.Equal(t, "user:view", result[0].Children[0].Code)
	require.Len(t, result[0].Children[0].Children, 1)
	require.Equal(t, "user:create", result[0].Children[0].Children[0].Code)
}

func TestLoadTreeCachesUntilInvalidate(t *testing.T) {
	var hits atomic.Int64
	server := catalogBackend(t, sampleTree(), &hits)
	catalog := NewCatalog(NewClient(server.URL, nil))

	_, err := catalog.LoadTree(context.Background())
	require.NoError(t, err)
	_, err = catalog.LoadTree(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(1), hits.Load())

	catalog.Invalidate()
	_, err = catalog.LoadTree(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(2), hits.Load())
}

func TestConcurrentLoadsCollapse(t *testing.T) {
	var hits atomic.Int64
	server := catalogBackend(t, sampleTree(), &hits)
	catalog := NewCatalog(NewClient(server.URL, nil))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = catalog.LoadTree(context.Background())
		}()
	}
	wg.Wait()
	require.LessOrEqual(t, hits.Load(), int64(2))
}
