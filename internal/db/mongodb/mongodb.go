package mongodb

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ukane-philemon/reportcard/internal/db"
	"github.com/ukane-philemon/reportcard/internal/student"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	// Collections
	studentCollection = "students"

	// Keys
	dbIDKey = "_id"
)

// Check that *MongoDB implements student.Repository.
var _ student.Repository = (*MongoDB)(nil)

// MongoDB implements student.Repository. Roll numbers are used as document
// IDs so the database enforces their uniqueness.
type MongoDB struct {
	ctx               context.Context
	db                *mongo.Database
	studentCollection *mongo.Collection
}

// New connects to a mongo database and returns a new instance of *MongoDB.
func New(ctx context.Context, dbName string, connectionURL string) (*MongoDB, error) {
	if connectionURL == "" {
		return nil, errors.New("missing mongodb database connection URL")
	}

	if dbName == "" {
		return nil, errors.New("database name is required")
	}

	// Set server API version for the client.
	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	opts := options.Client().ApplyURI(connectionURL).SetServerAPIOptions(serverAPI)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}

	err = client.Ping(ctx, readpref.Primary())
	if err != nil {
		return nil, fmt.Errorf("client.Ping error: %w", err)
	}

	log.Println("Database has been connected and pinged successfully...")

	mdb := client.Database(dbName)
	return &MongoDB{
		ctx:               ctx,
		db:                mdb,
		studentCollection: mdb.Collection(studentCollection),
	}, nil
}

// Add validates and saves a new student record.
// Implements student.Repository.
func (mdb *MongoDB) Add(rollNo int, name string, marks map[string]float64) (*student.Student, error) {
	record, err := student.Build(rollNo, name, marks, mdb.exists)
	if err != nil {
		return nil, err
	}

	_, err = mdb.studentCollection.InsertOne(mdb.ctx, newDBStudent(record, time.Now()))
	if err != nil {
		// Another writer may have taken the roll number after the check.
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: %d", db.ErrorDuplicateRollNo, rollNo)
		}
		return nil, fmt.Errorf("studentCollection.InsertOne error: %w", err)
	}

	return record, nil
}

// Student retrieves the student record for rollNo. Returns db.ErrorNotFound if
// no student is found.
// Implements student.Repository.
func (mdb *MongoDB) Student(rollNo int) (*student.Student, error) {
	var dbStudent *dbStudent
	err := mdb.studentCollection.FindOne(mdb.ctx, bson.M{dbIDKey: rollNo}).Decode(&dbStudent)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: roll number %d", db.ErrorNotFound, rollNo)
		}
		return nil, fmt.Errorf("studentCollection.FindOne error: %w", err)
	}

	return dbStudent.Student(), nil
}

// Shutdown attempts to shutdown the database.
// Implements student.Repository.
func (mdb *MongoDB) Shutdown(ctx context.Context) error {
	client := mdb.db.Client()
	err := client.Disconnect(ctx)
	if err != nil {
		return fmt.Errorf("client.Disconnect error: %w", err)
	}

	log.Println("Database has been shutdown successfully...")

	return nil
}

// exists checks if a student record with rollNo exists.
func (mdb *MongoDB) exists(rollNo int) (bool, error) {
	nStudents, err := mdb.studentCollection.CountDocuments(mdb.ctx, bson.M{dbIDKey: rollNo}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("studentCollection.CountDocuments error: %w", err)
	}

	return nStudents > 0, nil
}
