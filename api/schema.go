package api

// addStudentSchema only checks the shape of the request. Mark values are not
// constrained here so that non-numeric marks are reported as invalid marks by
// the repository, after its duplicate roll number check.
const addStudentSchema = `{
	"type": "object",
	"required": ["roll_no", "name", "marks"],
	"properties": {
		"roll_no": {"type": "integer"},
		"name": {"type": "string"},
		"marks": {"type": "object"}
	}
}`
