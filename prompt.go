package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/ukane-philemon/reportcard/internal/db"
	"github.com/ukane-philemon/reportcard/internal/student"
)

const menu = "\n1. Add Student\n2. Fetch Student\n3. Exit\n"

// errInputClosed is returned when the input ends in the middle of a question.
var errInputClosed = errors.New("input closed")

type prompt struct {
	repo  student.Repository
	in    *bufio.Scanner
	out   io.Writer
	plain lipgloss.Style
	grade map[string]lipgloss.Style
}

// runPrompt reads menu choices from in until the user exits or in ends.
func runPrompt(repo student.Repository, in io.Reader, out io.Writer) error {
	renderer := lipgloss.NewRenderer(out)
	good := renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	fair := renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	poor := renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))

	p := &prompt{
		repo:  repo,
		in:    bufio.NewScanner(in),
		out:   out,
		plain: renderer.NewStyle(),
		grade: map[string]lipgloss.Style{
			student.GradeA: good,
			student.GradeB: good,
			student.GradeC: fair,
			student.GradeD: fair,
			student.GradeF: poor,
		},
	}

	for {
		fmt.Fprint(p.out, menu)
		choice, err := p.ask("Enter choice: ")
		if err != nil {
			return p.closed(err)
		}

		switch strings.TrimSpace(choice) {
		case "1":
			err = p.addStudent()
		case "2":
			err = p.fetchStudent()
		case "3":
			return nil
		default:
			fmt.Fprintln(p.out, "Invalid choice.")
		}

		if errors.Is(err, errInputClosed) {
			return p.closed(err)
		}
		if err != nil {
			fmt.Fprintf(p.out, "Error: %v\n", err)
		}
	}
}

// closed turns the end of input into a clean exit unless reading failed.
func (p *prompt) closed(err error) error {
	if scanErr := p.in.Err(); scanErr != nil {
		return scanErr
	}
	if errors.Is(err, errInputClosed) {
		return nil
	}
	return err
}

func (p *prompt) ask(question string) (string, error) {
	fmt.Fprint(p.out, question)
	if !p.in.Scan() {
		return "", errInputClosed
	}
	return p.in.Text(), nil
}

func (p *prompt) askInt(question string) (int, error) {
	answer, err := p.ask(question)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(answer))
}

func (p *prompt) addStudent() error {
	rollNo, err := p.askInt("Enter roll number: ")
	if err != nil {
		return err
	}

	name, err := p.ask("Enter name: ")
	if err != nil {
		return err
	}

	subjects, err := p.ask("Enter subjects separated by comma: ")
	if err != nil {
		return err
	}

	marks := make(map[string]float64)
	for _, subject := range strings.Split(subjects, ",") {
		subject = strings.TrimSpace(subject)
		answer, err := p.ask(fmt.Sprintf("Enter marks for %s: ", subject))
		if err != nil {
			return err
		}

		mark, err := strconv.ParseFloat(strings.TrimSpace(answer), 64)
		if err != nil {
			return err
		}
		marks[subject] = mark
	}

	_, err = p.repo.Add(rollNo, name, marks)
	switch {
	case err == nil:
		fmt.Fprintln(p.out, "Student added successfully.")
	case errors.Is(err, db.ErrorInvalidEntry):
		fmt.Fprintln(p.out, "Invalid entry. Please check the details.")
	case errors.Is(err, db.ErrorDuplicateRollNo):
		fmt.Fprintln(p.out, "Roll number already exists.")
	case errors.Is(err, db.ErrorInvalidMarks):
		fmt.Fprintln(p.out, "Invalid marks. Must be between 0 and 100.")
	default:
		return err
	}
	return nil
}

func (p *prompt) fetchStudent() error {
	rollNo, err := p.askInt("Enter roll number to fetch: ")
	if err != nil {
		return err
	}

	record, err := p.repo.Student(rollNo)
	if err != nil {
		if errors.Is(err, db.ErrorNotFound) {
			fmt.Fprintln(p.out, "Student not found.")
			return nil
		}
		return err
	}

	p.printStudent(record)
	return nil
}

func (p *prompt) printStudent(record *student.Student) {
	subjects := make([]string, 0, len(record.Marks))
	for subject := range record.Marks {
		subjects = append(subjects, subject)
	}
	sort.Strings(subjects)

	fmt.Fprintf(p.out, "Roll No: %d\n", record.RollNo)
	fmt.Fprintf(p.out, "Name: %s\n", record.Name)
	fmt.Fprintln(p.out, "Marks:")
	for _, subject := range subjects {
		fmt.Fprintf(p.out, "  %s: %s\n", subject, strconv.FormatFloat(record.Marks[subject], 'f', -1, 64))
	}

	gradeStyle, ok := p.grade[record.Grade]
	if !ok {
		gradeStyle = p.plain
	}
	fmt.Fprintf(p.out, "Grade: %s\n", gradeStyle.Render(record.Grade))
}
