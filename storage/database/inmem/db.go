// Package inmemdb implements the core repositories on top of mutex-guarded
// maps. It is the default engine for local development and tests; OpenSeeded
// preloads a demo dataset so the dashboard is usable out of the box.
package inmemdb

import (
	"embed"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/classtrack/core/attendance"
	"github.com/trezcool/classtrack/core/class"
	"github.com/trezcool/classtrack/core/grade"
	"github.com/trezcool/classtrack/core/student"
	"github.com/trezcool/classtrack/core/user"
)

//go:embed fixtures/*.json
var fixturesFS embed.FS

type (
	DB struct {
		student    *studentTable
		class      *classTable
		grade      *gradeTable
		attendance *attendanceTable
		user       *userTable
	}

	studentTable struct {
		mutex sync.RWMutex
		seq   int
		table map[int]*student.Student
	}

	classTable struct {
		mutex sync.RWMutex
		seq   int
		table map[int]*class.Class
	}

	gradeTable struct {
		mutex sync.RWMutex
		seq   int
		table map[int]*grade.Grade
	}

	attendanceTable struct {
		mutex sync.RWMutex
		seq   int
		table map[int]*attendance.Record
	}

	userTable struct {
		mutex sync.RWMutex
		seq   int
		table map[int]*user.User
	}
)

// nextID must be called with the table's write lock held. IDs count up and
// are never reused, even after deletes.
func (t *studentTable) nextID() int    { t.seq++; return t.seq }
func (t *classTable) nextID() int      { t.seq++; return t.seq }
func (t *gradeTable) nextID() int      { t.seq++; return t.seq }
func (t *attendanceTable) nextID() int { t.seq++; return t.seq }
func (t *userTable) nextID() int       { t.seq++; return t.seq }

// Open returns an empty DB.
func Open() *DB {
	return &DB{
		student:    &studentTable{table: make(map[int]*student.Student)},
		class:      &classTable{table: make(map[int]*class.Class)},
		grade:      &gradeTable{table: make(map[int]*grade.Grade)},
		attendance: &attendanceTable{table: make(map[int]*attendance.Record)},
		user:       &userTable{table: make(map[int]*user.User)},
	}
}

// Fixtures holds the embedded demo dataset.
type Fixtures struct {
	Students []student.Student
	Classes  []class.Class
	Grades   []grade.Grade
	Records  []attendance.Record
}

// LoadFixtures parses the embedded demo dataset.
func LoadFixtures() (Fixtures, error) {
	var f Fixtures
	if err := loadFixture("fixtures/students.json", &f.Students); err != nil {
		return f, err
	}
	if err := loadFixture("fixtures/classes.json", &f.Classes); err != nil {
		return f, err
	}
	if err := loadFixture("fixtures/grades.json", &f.Grades); err != nil {
		return f, err
	}
	if err := loadFixture("fixtures/attendance.json", &f.Records); err != nil {
		return f, err
	}
	return f, nil
}

// OpenSeeded returns a DB preloaded with the embedded demo dataset. Each
// table's id sequence resumes from the highest seeded id.
func OpenSeeded() (*DB, error) {
	db := Open()

	fixtures, err := LoadFixtures()
	if err != nil {
		return nil, err
	}

	for i := range fixtures.Students {
		s := fixtures.Students[i]
		db.student.table[s.ID] = &s
		if s.ID > db.student.seq {
			db.student.seq = s.ID
		}
	}
	for i := range fixtures.Classes {
		c := fixtures.Classes[i]
		db.class.table[c.ID] = &c
		if c.ID > db.class.seq {
			db.class.seq = c.ID
		}
	}
	for i := range fixtures.Grades {
		g := fixtures.Grades[i]
		db.grade.table[g.ID] = &g
		if g.ID > db.grade.seq {
			db.grade.seq = g.ID
		}
	}
	for i := range fixtures.Records {
		r := fixtures.Records[i]
		db.attendance.table[r.ID] = &r
		if r.ID > db.attendance.seq {
			db.attendance.seq = r.ID
		}
	}

	return db, nil
}

func loadFixture(name string, dst interface{}) error {
	data, err := fixturesFS.ReadFile(name)
	if err != nil {
		return errors.Wrapf(err, "reading %s", name)
	}
	if err = json.Unmarshal(data, dst); err != nil {
		return errors.Wrapf(err, "parsing %s", name)
	}
	return nil
}
