package mongodb

import (
	"time"

	"github.com/ukane-philemon/reportcard/internal/student"
)

type dbStudent struct {
	RollNo    int                `bson:"_id"`
	Name      string             `bson:"name"`
	Marks     map[string]float64 `bson:"marks"`
	Grade     string             `bson:"grade"`
	CreatedAt int64              `bson:"createdAt"`
}

func newDBStudent(s *student.Student, createdAt time.Time) *dbStudent {
	return &dbStudent{
		RollNo:    s.RollNo,
		Name:      s.Name,
		Marks:     s.Marks,
		Grade:     s.Grade,
		CreatedAt: createdAt.Unix(),
	}
}

// Student converts the stored document to its student representation. The
// stored grade is returned as-is.
func (ds *dbStudent) Student() *student.Student {
	return &student.Student{
		RollNo: ds.RollNo,
		Name:   ds.Name,
		Marks:  ds.Marks,
		Grade:  ds.Grade,
	}
}
