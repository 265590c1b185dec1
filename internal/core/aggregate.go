package core

import "sort"

// Aggregate holds the deduplicated, sorted line items of a set of reports.
type Aggregate struct {
	Tasks      []string `json:"unique_tasks"`
	Challenges []string `json:"unique_challenges"`
	NextPlans  []string `json:"unique_next_plans"`
}

// TaskCount is one entry of the task frequency ranking.
type TaskCount struct {
	Task  string `json:"task"`
	Count int    `json:"count"`
}

// AggregateReports collects the line items of tasks, challenges and next
// plans across records. Each list is deduplicated and sorted ascending.
// Records are expected to be already restricted to the wanted window.
func AggregateReports(records []Report) Aggregate {
	var tasks, challenges, plans []string
	for _, r := range records {
		tasks = append(tasks, ExtractItems(r.TasksPtr())...)
		challenges = append(challenges, ExtractItems(r.Challenges)...)
		plans = append(plans, ExtractItems(r.NextPlan)...)
	}
	return Aggregate{
		Tasks:      uniqueSorted(tasks),
		Challenges: uniqueSorted(challenges),
		NextPlans:  uniqueSorted(plans),
	}
}

// RankTasks counts every occurrence of each task line across records and
// returns the counts highest first. Equal counts keep first-encounter order.
// A record without tasks contributes nothing.
func RankTasks(records []Report) []TaskCount {
	index := map[string]int{}
	ranking := []TaskCount{}
	for _, r := range records {
		for _, task := range ExtractItems(r.TasksPtr()) {
			if i, ok := index[task]; ok {
				ranking[i].Count++
				continue
			}
			index[task] = len(ranking)
			ranking = append(ranking, TaskCount{Task: task, Count: 1})
		}
	}
	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Count > ranking[j].Count
	})
	return ranking
}

func uniqueSorted(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, v := range items {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
