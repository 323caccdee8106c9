package view_test

import (
	"testing"
	"time"

	"clearTask/internal/models/task"
	"clearTask/internal/view"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func mk(id, title string, opts ...task.TaskOption) task.Task {
	t := task.Task{
		ID:        id,
		Title:     title,
		Priority:  task.PriorityMedium,
		CreatedAt: base,
		UpdatedAt: base,
	}
	task.Apply(&t, opts...)
	return t
}

func created(d time.Duration) task.TaskOption {
	return func(t *task.Task) {
		t.CreatedAt = base.Add(d)
		t.UpdatedAt = t.CreatedAt
	}
}

func titles(tasks []task.Task) []string {
	res := make([]string, len(tasks))
	for i, t := range tasks {
		res[i] = t.Title
	}
	return res
}

// TestProject_FilterAndSearch тестирует поиск вместе с фильтром статуса
func TestProject_FilterAndSearch(t *testing.T) {
	tasks := []task.Task{
		mk("1", "Email Bob"),
		mk("2", "Call Bob", task.WithCompleted(true)),
		mk("3", "Buy eggs"),
	}

	got := view.Project(tasks, view.Query{Search: "bob", Filter: view.FilterPending, Sort: view.SortDate})
	assert.Equal(t, []string{"Email Bob"}, titles(got))
}

func TestProject_Search(t *testing.T) {
	tasks := []task.Task{
		mk("1", "Groceries", task.WithDescription("Milk and BREAD")),
		mk("2", "Bread maker manual", created(-time.Hour)),
		mk("3", "No description here", created(-2*time.Hour)),
		mk("4", "Other", task.WithDescription(""), created(-3*time.Hour)),
	}

	tests := []struct {
		name   string
		search string
		want   []string
	}{
		{name: "empty search keeps all", search: "", want: []string{"Groceries", "Bread maker manual", "No description here", "Other"}},
		{name: "matches title and description", search: "bread", want: []string{"Groceries", "Bread maker manual"}},
		{name: "case-insensitive", search: "MILK", want: []string{"Groceries"}},
		{name: "missing description only matches title", search: "description", want: []string{"No description here"}},
		{name: "nothing matches", search: "zzz", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := view.Project(tasks, view.Query{Search: tt.search})
			assert.Equal(t, tt.want, titles(got))
		})
	}
}

func TestProject_StatusFilter(t *testing.T) {
	tasks := []task.Task{
		mk("1", "a"),
		mk("2", "b", task.WithCompleted(true), created(-time.Minute)),
		mk("3", "c", created(-2*time.Minute)),
	}

	assert.Equal(t, []string{"a", "b", "c"}, titles(view.Project(tasks, view.Query{Filter: view.FilterAll})))
	assert.Equal(t, []string{"a", "c"}, titles(view.Project(tasks, view.Query{Filter: view.FilterPending})))
	assert.Equal(t, []string{"b"}, titles(view.Project(tasks, view.Query{Filter: view.FilterCompleted})))
}

// TestProject_SortByPriority тестирует сортировку по приоритету
func TestProject_SortByPriority(t *testing.T) {
	tasks := []task.Task{
		mk("1", "low", task.WithPriority(task.PriorityLow)),
		mk("2", "high", task.WithPriority(task.PriorityHigh)),
		mk("3", "medium", task.WithPriority(task.PriorityMedium)),
	}

	got := view.Project(tasks, view.Query{Sort: view.SortPriority})
	assert.Equal(t, []string{"high", "medium", "low"}, titles(got))
}

func TestProject_SortByPriorityIsStable(t *testing.T) {
	tasks := []task.Task{
		mk("1", "h1", task.WithPriority(task.PriorityHigh)),
		mk("2", "m1"),
		mk("3", "h2", task.WithPriority(task.PriorityHigh)),
		mk("4", "m2"),
	}

	got := view.Project(tasks, view.Query{Sort: view.SortPriority})
	assert.Equal(t, []string{"h1", "h2", "m1", "m2"}, titles(got))
}

func TestProject_SortByDate(t *testing.T) {
	tasks := []task.Task{
		mk("1", "old", created(-48*time.Hour)),
		mk("2", "new", created(time.Hour)),
		mk("3", "mid"),
	}

	got := view.Project(tasks, view.Query{Sort: view.SortDate})
	assert.Equal(t, []string{"new", "mid", "old"}, titles(got))
}

func TestProject_SortByTitle(t *testing.T) {
	tasks := []task.Task{
		mk("1", "banana"),
		mk("2", "Äpfel"),
		mk("3", "apple"),
		mk("4", "Zebra"),
		mk("5", "cherry"),
	}

	got := view.Project(tasks, view.Query{Sort: view.SortTitle})
	// регистр и диакритика учитываются только на равных буквах
	assert.Equal(t, []string{"Äpfel", "apple", "banana", "cherry", "Zebra"}, titles(got))
}

func TestProject_SortByTitleLocale(t *testing.T) {
	tasks := []task.Task{
		mk("1", "ö"),
		mk("2", "z"),
		mk("3", "o"),
	}

	en := view.Project(tasks, view.Query{Sort: view.SortTitle, Locale: language.English})
	assert.Equal(t, []string{"o", "ö", "z"}, titles(en))

	// в шведском ö идёт после z
	sv := view.Project(tasks, view.Query{Sort: view.SortTitle, Locale: language.Swedish})
	assert.Equal(t, []string{"o", "z", "ö"}, titles(sv))
}

// TestProject_PinnedFirst тестирует, что закреплённые задачи всегда выше
func TestProject_PinnedFirst(t *testing.T) {
	tasks := []task.Task{
		mk("1", "alpha", task.WithPriority(task.PriorityHigh), created(time.Hour)),
		mk("2", "zulu pinned", task.WithPinned(true), task.WithPriority(task.PriorityLow), created(-time.Hour)),
		mk("3", "bravo"),
		mk("4", "yankee pinned", task.WithPinned(true), task.WithCompleted(true)),
	}

	for _, s := range []view.Sort{view.SortDate, view.SortPriority, view.SortTitle} {
		t.Run(string(s), func(t *testing.T) {
			got := view.Project(tasks, view.Query{Sort: s})
			require.Len(t, got, 4)

			seenUnpinned := false
			for _, tk := range got {
				if !tk.Pinned {
					seenUnpinned = true
					continue
				}
				assert.False(t, seenUnpinned, "pinned task %q after unpinned", tk.Title)
			}
		})
	}

	byTitle := view.Project(tasks, view.Query{Sort: view.SortTitle})
	assert.Equal(t, []string{"yankee pinned", "zulu pinned", "alpha", "bravo"}, titles(byTitle))
}

// TestProject_DoesNotMutateInput тестирует отсутствие побочных эффектов
func TestProject_DoesNotMutateInput(t *testing.T) {
	tasks := []task.Task{
		mk("1", "c", task.WithDescription("x"), created(-time.Hour)),
		mk("2", "a", task.WithPinned(true)),
		mk("3", "b", created(time.Hour)),
	}
	snapshot := make([]task.Task, len(tasks))
	for i, tk := range tasks {
		snapshot[i] = tk.Clone()
	}

	got := view.Project(tasks, view.Query{Sort: view.SortTitle})
	*got[len(got)-1].Description = "changed"
	got[0].Title = "changed"

	assert.Equal(t, snapshot, tasks)
}

func TestProject_Deterministic(t *testing.T) {
	tasks := []task.Task{
		mk("1", "same"),
		mk("2", "same"),
		mk("3", "Same", task.WithPinned(true)),
		mk("4", "other", task.WithPriority(task.PriorityHigh)),
	}

	for _, s := range []view.Sort{view.SortDate, view.SortPriority, view.SortTitle} {
		q := view.Query{Sort: s}
		first := view.Project(tasks, q)
		for i := 0; i < 10; i++ {
			assert.Equal(t, first, view.Project(tasks, q))
		}
	}
}

func TestProject_Empty(t *testing.T) {
	got := view.Project(nil, view.Query{})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		in      string
		want    view.Filter
		wantErr bool
	}{
		{in: "", want: view.FilterAll},
		{in: "all", want: view.FilterAll},
		{in: "Pending", want: view.FilterPending},
		{in: " completed ", want: view.FilterCompleted},
		{in: "done", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := view.ParseFilter(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSort(t *testing.T) {
	tests := []struct {
		in      string
		want    view.Sort
		wantErr bool
	}{
		{in: "", want: view.SortDate},
		{in: "date", want: view.SortDate},
		{in: "PRIORITY", want: view.SortPriority},
		{in: "title", want: view.SortTitle},
		{in: "random", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := view.ParseSort(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCount(t *testing.T) {
	tasks := []task.Task{
		mk("1", "a"),
		mk("2", "b", task.WithCompleted(true)),
	}
	assert.Equal(t, task.Stats{Total: 2, Pending: 1, Completed: 1}, view.Count(tasks))
}
