package view

import (
	"fmt"
	"sort"
	"strings"

	"clearTask/internal/models/task"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type Filter string

const (
	FilterAll       Filter = "all"
	FilterPending   Filter = "pending"
	FilterCompleted Filter = "completed"
)

type Sort string

const (
	SortDate     Sort = "date"
	SortPriority Sort = "priority"
	SortTitle    Sort = "title"
)

// Query describes one projection of the task list. Zero values mean
// "no search", FilterAll, SortDate and English collation.
type Query struct {
	Search string
	Filter Filter
	Sort   Sort
	Locale language.Tag
}

func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterPending, FilterCompleted:
		return f, nil
	default:
		return "", fmt.Errorf("неизвестный фильтр %q", s)
	}
}

func ParseSort(s string) (Sort, error) {
	switch k := Sort(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return SortDate, nil
	case SortDate, SortPriority, SortTitle:
		return k, nil
	default:
		return "", fmt.Errorf("неизвестная сортировка %q", s)
	}
}

// Project returns the display sequence for tasks: search, then status filter,
// then a stable sort with pinned tasks first. The input slice is not modified.
func Project(tasks []task.Task, q Query) []task.Task {
	needle := strings.ToLower(q.Search)

	res := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		if needle != "" && !matches(t, needle) {
			continue
		}
		if !keep(t, q.Filter) {
			continue
		}
		res = append(res, t.Clone())
	}

	less := lessFunc(q)
	sort.SliceStable(res, func(i, j int) bool {
		if res[i].Pinned != res[j].Pinned {
			return res[i].Pinned
		}
		return less(res[i], res[j])
	})
	return res
}

// Count returns the dashboard counters for tasks.
func Count(tasks []task.Task) task.Stats {
	return task.Count(tasks)
}

func matches(t task.Task, needle string) bool {
	if strings.Contains(strings.ToLower(t.Title), needle) {
		return true
	}
	return t.Description != nil && strings.Contains(strings.ToLower(*t.Description), needle)
}

func keep(t task.Task, f Filter) bool {
	switch f {
	case FilterPending:
		return !t.Completed
	case FilterCompleted:
		return t.Completed
	default:
		return true
	}
}

func lessFunc(q Query) func(a, b task.Task) bool {
	switch q.Sort {
	case SortPriority:
		return func(a, b task.Task) bool {
			return a.Priority.Rank() > b.Priority.Rank()
		}
	case SortTitle:
		tag := q.Locale
		if tag == language.Und {
			tag = language.English
		}
		// collator keeps internal buffers, one per call
		col := collate.New(tag)
		return func(a, b task.Task) bool {
			if c := col.CompareString(a.Title, b.Title); c != 0 {
				return c < 0
			}
			return a.Title < b.Title
		}
	default:
		return func(a, b task.Task) bool {
			return a.CreatedAt.After(b.CreatedAt)
		}
	}
}
