package recommendation

import "sort"

// MergeByStrategy сливает кандидатов стратегий в один список.
//
// Порядок слияния задаётся параметром order. Дубликаты по идентификатору
// достижения схлопываются: остаётся вхождение из ПОСЛЕДНЕЙ стратегии,
// предложившей достижение, вместе с её причиной и приоритетом. Итог
// стабильно отсортирован по убыванию приоритета.
func MergeByStrategy(order []Reason, byStrategy map[Reason][]Recommended) []Recommended {
	var combined []Recommended
	for _, reason := range order {
		combined = append(combined, byStrategy[reason]...)
	}

	index := map[string]int{}
	var merged []Recommended
	for _, r := range combined {
		if at, seen := index[r.Achievement.ID]; seen {
			merged = append(merged[:at], merged[at+1:]...)
			for id, pos := range index {
				if pos > at {
					index[id] = pos - 1
				}
			}
		}
		index[r.Achievement.ID] = len(merged)
		merged = append(merged, r)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Priority > merged[j].Priority
	})
	return merged
}
