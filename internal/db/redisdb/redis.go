package redisdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/go-redis/redis/v8"
	"github.com/ukane-philemon/reportcard/internal/db"
	"github.com/ukane-philemon/reportcard/internal/student"
)

// studentKeyPrefix prefixes the string key holding a student's JSON record:
// student:{rollNo}.
const studentKeyPrefix = "student:"

// Check that *Redis implements student.Repository.
var _ student.Repository = (*Redis)(nil)

// Redis implements student.Repository on top of a redis server.
type Redis struct {
	ctx    context.Context
	client *redis.Client
}

// New connects to the redis server at addr and returns a new instance of
// *Redis.
func New(ctx context.Context, addr, password string, dbIndex int) (*Redis, error) {
	if addr == "" {
		return nil, errors.New("missing redis server address")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       dbIndex,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("client.Ping error: %w", err)
	}

	log.Printf("Connected to redis at %s (db %d)", addr, dbIndex)

	return &Redis{
		ctx:    ctx,
		client: client,
	}, nil
}

func studentKey(rollNo int) string {
	return studentKeyPrefix + strconv.Itoa(rollNo)
}

// Add validates and saves a new student record.
// Implements student.Repository.
func (r *Redis) Add(rollNo int, name string, marks map[string]float64) (*student.Student, error) {
	record, err := student.Build(rollNo, name, marks, r.exists)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal error: %w", err)
	}

	// SETNX keeps the roll number unique if another writer won the race.
	added, err := r.client.SetNX(r.ctx, studentKey(rollNo), data, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("client.SetNX error: %w", err)
	}

	if !added {
		return nil, fmt.Errorf("%w: %d", db.ErrorDuplicateRollNo, rollNo)
	}

	return record, nil
}

// Student retrieves the student record for rollNo. Returns db.ErrorNotFound if
// no student is found.
// Implements student.Repository.
func (r *Redis) Student(rollNo int) (*student.Student, error) {
	data, err := r.client.Get(r.ctx, studentKey(rollNo)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: roll number %d", db.ErrorNotFound, rollNo)
		}
		return nil, fmt.Errorf("client.Get error: %w", err)
	}

	var record *student.Student
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to decode student %d: %w", rollNo, err)
	}

	if record == nil {
		return nil, fmt.Errorf("failed to decode student %d: stored record is null", rollNo)
	}

	return record, nil
}

// Shutdown closes the redis client.
// Implements student.Repository.
func (r *Redis) Shutdown(_ context.Context) error {
	if err := r.client.Close(); err != nil {
		return fmt.Errorf("client.Close error: %w", err)
	}

	log.Println("Redis client has been closed successfully...")
	return nil
}

func (r *Redis) exists(rollNo int) (bool, error) {
	n, err := r.client.Exists(r.ctx, studentKey(rollNo)).Result()
	if err != nil {
		return false, fmt.Errorf("client.Exists error: %w", err)
	}
	return n > 0, nil
}
