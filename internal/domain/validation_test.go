package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateID(t *testing.T) {
	t.Parallel()

	t.Run("valid id", func(t *testing.T) {
		if err := ValidateID("01HV3K8Z9Q-emp_7"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("empty id rejected", func(t *testing.T) {
		if err := ValidateID("  "); !errors.Is(err, ErrInvalidIDFormat) {
			t.Fatalf("expected ErrInvalidIDFormat, got %v", err)
		}
	})

	t.Run("id too long", func(t *testing.T) {
		if err := ValidateID(strings.Repeat("a", MaxIDLength+1)); !errors.Is(err, ErrInvalidIDFormat) {
			t.Fatalf("expected ErrInvalidIDFormat, got %v", err)
		}
	})

	t.Run("id with forbidden characters", func(t *testing.T) {
		if err := ValidateID("emp/1;drop"); !errors.Is(err, ErrInvalidIDFormat) {
			t.Fatalf("expected ErrInvalidIDFormat, got %v", err)
		}
	})
}

func TestParseDate(t *testing.T) {
	t.Parallel()

	got, err := ParseDate("2026-02-28")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !got.Equal(day("2026-02-28")) {
		t.Fatalf("unexpected date %v", got)
	}

	if _, err := ParseDate("28/02/2026"); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestValidateSourceChanged(t *testing.T) {
	t.Parallel()

	valid := func() *SourceChanged {
		return &SourceChanged{
			SourceType: SourceTypeAdvance,
			SourceID:   "adv-1",
			Action:     SourceActionUpdated,
			Subjects:   []string{"emp-1"},
		}
	}

	if err := ValidateSourceChanged(valid()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	unknownType := valid()
	unknownType.SourceType = "invoice"
	if err := ValidateSourceChanged(unknownType); !errors.Is(err, ErrUnknownSourceType) {
		t.Fatalf("expected ErrUnknownSourceType, got %v", err)
	}

	badAction := valid()
	badAction.Action = "archived"
	if err := ValidateSourceChanged(badAction); !errors.Is(err, ErrInvalidSourceChange) {
		t.Fatalf("expected ErrInvalidSourceChange, got %v", err)
	}

	noSubjects := valid()
	noSubjects.Subjects = nil
	if err := ValidateSourceChanged(noSubjects); !errors.Is(err, ErrInvalidSourceChange) {
		t.Fatalf("expected ErrInvalidSourceChange, got %v", err)
	}

	badSubject := valid()
	badSubject.Subjects = []string{"emp 1"}
	if err := ValidateSourceChanged(badSubject); !errors.Is(err, ErrInvalidIDFormat) {
		t.Fatalf("expected ErrInvalidIDFormat, got %v", err)
	}
}
