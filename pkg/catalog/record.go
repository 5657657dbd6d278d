package catalog

// Record is one class row of the dataset. Every field is always present,
// possibly empty.
type Record struct {
	SchoolCode      string
	InstitutionCode string
	SchoolName      string
	InstitutionName string
	Municipality    string
	Province        string
	ClassLabel      string
}
