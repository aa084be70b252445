package train

// Record is one logged training measurement.
type Record struct {
	Step     int
	Loss     float64
	Accuracy float64
}

// History collects training records for plotting.
type History struct {
	records []Record
}

// Append adds a record.
func (h *History) Append(r Record) {
	h.records = append(h.records, r)
}

// Records returns all records in step order.
func (h *History) Records() []Record {
	return h.records
}

// Len returns the number of records.
func (h *History) Len() int {
	return len(h.records)
}
