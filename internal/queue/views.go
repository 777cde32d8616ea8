package queue

// View names a projection of the queue snapshot.
type View string

const (
	ViewPending  View = "pending"
	ViewApproved View = "approved"
	ViewPosted   View = "posted"
	ViewAll      View = "all"
)

// AllViews returns the views in display order.
func AllViews() []View {
	return []View{ViewPending, ViewApproved, ViewPosted, ViewAll}
}

// ParseView converts a string into a known View.
func ParseView(value string) (View, bool) {
	for _, v := range AllViews() {
		if string(v) == value {
			return v, true
		}
	}
	return "", false
}

// Partition is the in-memory grouping of one queue snapshot. Rejected items
// only appear under All.
type Partition struct {
	Pending  []Item
	Approved []Item
	Posted   []Item
	All      []Item
}

// PartitionItems groups items by status. It is a pure function of its input
// and preserves the snapshot order within each view.
func PartitionItems(items []Item) Partition {
	p := Partition{All: make([]Item, 0, len(items))}
	for _, item := range items {
		p.All = append(p.All, item)
		switch item.Status {
		case StatusPending:
			p.Pending = append(p.Pending, item)
		case StatusApproved:
			p.Approved = append(p.Approved, item)
		case StatusPosted:
			p.Posted = append(p.Posted, item)
		}
	}
	return p
}

// View returns the items belonging to v.
func (p Partition) View(v View) []Item {
	switch v {
	case ViewPending:
		return p.Pending
	case ViewApproved:
		return p.Approved
	case ViewPosted:
		return p.Posted
	default:
		return p.All
	}
}

// Counts returns the number of items per status.
func (p Partition) Counts() map[Status]int {
	counts := make(map[Status]int, len(allStatuses))
	for _, item := range p.All {
		counts[item.Status]++
	}
	return counts
}

// Find returns the item with id from the snapshot.
func (p Partition) Find(id ID) (Item, bool) {
	for _, item := range p.All {
		if item.ID == id {
			return item, true
		}
	}
	return Item{}, false
}
