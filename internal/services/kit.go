package services

// ProductLine is one (product, quantity) entry of a kit create/update request.
type ProductLine struct {
	ProductID uint `json:"productId"`
	Quantite  int  `json:"quantite"`
}

// MergeProductLines collapses duplicate product ids by summing quantities,
// keeping first-seen order. A kit references a product at most once, so
// duplicate selections are merged before persistence.
func MergeProductLines(lines []ProductLine) []ProductLine {
	merged := make([]ProductLine, 0, len(lines))
	index := map[uint]int{}
	for _, l := range lines {
		if i, ok := index[l.ProductID]; ok {
			merged[i].Quantite += l.Quantite
			continue
		}
		index[l.ProductID] = len(merged)
		merged = append(merged, l)
	}
	return merged
}
