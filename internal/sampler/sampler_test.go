package sampler

import (
	"fmt"
	"math/rand"
	"testing"

	"trivia-quiz-service/internal/domain"
)

func TestSubcategorySampleIsExactAndDistinct(t *testing.T) {
	bank := bankWithSubcategory("history", "japan", questionPool("q", 50))
	s := New(rand.New(rand.NewSource(1)))

	for run := 0; run < 100; run++ {
		picked, err := s.Subcategory(bank, "history", "japan", 10)
		if err != nil {
			t.Fatalf("sample: %v", err)
		}
		if len(picked) != 10 {
			t.Fatalf("expected 10 questions, got %d", len(picked))
		}
		seen := map[string]bool{}
		for _, q := range picked {
			if seen[q.Text] {
				t.Fatalf("duplicate question %q in one sample", q.Text)
			}
			seen[q.Text] = true
		}
	}
}

func TestSubcategoryExhaustsSmallPool(t *testing.T) {
	bank := bankWithSubcategory("history", "japan", questionPool("q", 4))
	s := New(rand.New(rand.NewSource(7)))

	picked, err := s.Subcategory(bank, "history", "japan", 10)
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	if len(picked) != 4 {
		t.Fatalf("expected all 4 questions, got %d", len(picked))
	}
}

func TestSubcategoryExactFit(t *testing.T) {
	bank := bankWithSubcategory("history", "japan", questionPool("q", 10))
	s := New(rand.New(rand.NewSource(3)))

	picked, err := s.Subcategory(bank, "history", "japan", 10)
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	seen := map[string]bool{}
	for _, q := range picked {
		seen[q.Text] = true
	}
	if len(seen) != 10 {
		t.Fatalf("expected each of the 10 questions exactly once, got %d distinct", len(seen))
	}
}

func TestSubcategoryEmptyPool(t *testing.T) {
	bank := bankWithSubcategory("history", "japan", nil)
	s := New(rand.New(rand.NewSource(1)))

	if _, err := s.Subcategory(bank, "history", "japan", 10); err != domain.ErrNoQuestions {
		t.Fatalf("expected ErrNoQuestions, got %v", err)
	}
	if _, err := s.Subcategory(bank, "nope", "japan", 10); err != domain.ErrCategoryNotFound {
		t.Fatalf("expected ErrCategoryNotFound, got %v", err)
	}
	if _, err := s.Subcategory(bank, "history", "nope", 10); err != domain.ErrSubcategoryNotFound {
		t.Fatalf("expected ErrSubcategoryNotFound, got %v", err)
	}
}

func TestInvalidQuestionsAreExcluded(t *testing.T) {
	pool := []domain.RawQuestion{
		{Text: "ok", CorrectAnswer: "a", Distractors: []string{"b", "c", "d"}},
		{Text: "", CorrectAnswer: "a", Distractors: []string{"b", "c", "d"}},
		{Text: "missing answer", CorrectAnswer: "", Distractors: []string{"b", "c", "d"}},
		{Text: "two distractors", CorrectAnswer: "a", Distractors: []string{"b", "c"}},
		{Text: "dup distractor", CorrectAnswer: "a", Distractors: []string{"b", "b", "c"}},
		{Text: "correct repeated", CorrectAnswer: "a", Distractors: []string{"a", "b", "c"}},
	}
	bank := bankWithSubcategory("history", "japan", pool)
	s := New(rand.New(rand.NewSource(1)))

	picked, err := s.Subcategory(bank, "history", "japan", 10)
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	if len(picked) != 1 || picked[0].Text != "ok" {
		t.Fatalf("expected only the valid question, got %+v", picked)
	}
}

func TestCategoryQuotaBalance(t *testing.T) {
	// 3 subcategories, each with plenty; n=20 -> quotas {7,7,6}.
	bank := domain.QuestionBank{Categories: map[string]domain.Category{
		"science": {
			ID: "science", Name: "Science",
			Subcategories: map[string]domain.Subcategory{
				"bio":  {ID: "bio", Name: "Biology", Questions: questionPool("bio", 15)},
				"chem": {ID: "chem", Name: "Chemistry", Questions: questionPool("chem", 15)},
				"phys": {ID: "phys", Name: "Physics", Questions: questionPool("phys", 15)},
			},
		},
	}}
	s := New(rand.New(rand.NewSource(11)))

	picked, err := s.Category(bank, "science", 20)
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	if len(picked) != 20 {
		t.Fatalf("expected 20 questions, got %d", len(picked))
	}
	perSub := map[string]int{}
	for _, q := range picked {
		perSub[q.SubcategoryID]++
	}
	total := 0
	for sub, count := range perSub {
		if count != 6 && count != 7 {
			t.Fatalf("subcategory %s contributed %d, expected 6 or 7", sub, count)
		}
		total += count
	}
	if total != 20 {
		t.Fatalf("contributions sum to %d, expected 20", total)
	}
}

func TestCategoryBackfillsUnevenSubcategories(t *testing.T) {
	// Sizes {5, 15, 0}: two non-empty groups, quotas {10, 10}; the small one
	// gives 5 and the shortfall comes from the big one's remainder.
	bank := domain.QuestionBank{Categories: map[string]domain.Category{
		"science": {
			ID: "science", Name: "Science",
			Subcategories: map[string]domain.Subcategory{
				"bio":  {ID: "bio", Name: "Biology", Questions: questionPool("bio", 5)},
				"chem": {ID: "chem", Name: "Chemistry", Questions: questionPool("chem", 15)},
				"phys": {ID: "phys", Name: "Physics"},
			},
		},
	}}
	s := New(rand.New(rand.NewSource(5)))

	picked, err := s.Category(bank, "science", 20)
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	if len(picked) != 20 {
		t.Fatalf("expected 20 questions, got %d", len(picked))
	}
	perSub := map[string]int{}
	for _, q := range picked {
		perSub[q.SubcategoryID]++
	}
	if perSub["bio"] != 5 || perSub["chem"] != 15 {
		t.Fatalf("expected bio=5 chem=15, got %v", perSub)
	}
}

func TestCategoryShortPoolWithoutDuplicates(t *testing.T) {
	bank := bankWithSubcategory("history", "japan", questionPool("q", 6))
	s := New(rand.New(rand.NewSource(2)))

	picked, err := s.Category(bank, "history", 20)
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	if len(picked) != 6 {
		t.Fatalf("expected shorter result of 6, got %d", len(picked))
	}
	seen := map[string]bool{}
	for _, q := range picked {
		if seen[q.Text] {
			t.Fatalf("unexpected duplicate %q", q.Text)
		}
		seen[q.Text] = true
	}
}

func TestCategoryPadsWithReplacementWhenAllowed(t *testing.T) {
	bank := bankWithSubcategory("history", "japan", questionPool("q", 6))
	s := New(rand.New(rand.NewSource(2)))
	s.AllowDuplicates = true

	picked, err := s.Category(bank, "history", 20)
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	if len(picked) != 20 {
		t.Fatalf("expected padded result of 20, got %d", len(picked))
	}
}

func TestAllSpansCategories(t *testing.T) {
	bank := domain.QuestionBank{Categories: map[string]domain.Category{
		"history": {
			ID: "history", Name: "History",
			Subcategories: map[string]domain.Subcategory{
				"japan": {ID: "japan", Name: "Japan", Questions: questionPool("jp", 20)},
				"world": {ID: "world", Name: "World", Questions: questionPool("wd", 20)},
			},
		},
		"science": {
			ID: "science", Name: "Science",
			Subcategories: map[string]domain.Subcategory{
				"phys": {ID: "phys", Name: "Physics", Questions: questionPool("ph", 20)},
			},
		},
	}}
	s := New(rand.New(rand.NewSource(9)))

	picked, err := s.All(bank, 30)
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	if len(picked) != 30 {
		t.Fatalf("expected 30 questions, got %d", len(picked))
	}
	perCat := map[string]int{}
	seen := map[string]bool{}
	for _, q := range picked {
		perCat[q.CategoryID]++
		if seen[q.Text] {
			t.Fatalf("duplicate question %q", q.Text)
		}
		seen[q.Text] = true
	}
	if perCat["history"] == 0 || perCat["science"] == 0 {
		t.Fatalf("expected both categories represented, got %v", perCat)
	}
}

func TestAllEmptyBank(t *testing.T) {
	s := New(rand.New(rand.NewSource(1)))
	if _, err := s.All(domain.QuestionBank{}, 30); err != domain.ErrNoQuestions {
		t.Fatalf("expected ErrNoQuestions, got %v", err)
	}
}

func TestShuffleIsUniform(t *testing.T) {
	// Count permutation frequencies of a 3-element shuffle. A Fisher-Yates
	// pass gives each of the 6 permutations probability 1/6; the comparator
	// trick this replaced was measurably biased at this sample size.
	s := New(rand.New(rand.NewSource(42)))
	base := []domain.SampledQuestion{
		{RawQuestion: domain.RawQuestion{Text: "a"}},
		{RawQuestion: domain.RawQuestion{Text: "b"}},
		{RawQuestion: domain.RawQuestion{Text: "c"}},
	}

	const runs = 60000
	counts := map[string]int{}
	for i := 0; i < runs; i++ {
		out := s.shuffled(base)
		counts[out[0].Text+out[1].Text+out[2].Text]++
	}
	if len(counts) != 6 {
		t.Fatalf("expected 6 permutations, got %d", len(counts))
	}
	expected := runs / 6
	for perm, count := range counts {
		if count < expected*9/10 || count > expected*11/10 {
			t.Fatalf("permutation %s occurred %d times, expected about %d", perm, count, expected)
		}
	}
}

func TestOptionsHaveExactlyOneCorrect(t *testing.T) {
	rng := rand.New(rand.NewSource(13))
	q := domain.SampledQuestion{RawQuestion: domain.RawQuestion{
		Text:          "capital of France?",
		CorrectAnswer: "Paris",
		Distractors:   []string{"Berlin", "Madrid", "Rome"},
	}}

	for run := 0; run < 50; run++ {
		opts := Options(q, rng)
		if len(opts) != 4 {
			t.Fatalf("expected 4 options, got %d", len(opts))
		}
		correct := 0
		for _, o := range opts {
			if o.Correct {
				correct++
				if o.Text != "Paris" {
					t.Fatalf("correct flag on wrong option %q", o.Text)
				}
			}
		}
		if correct != 1 {
			t.Fatalf("expected exactly one correct option, got %d", correct)
		}
	}
}

func bankWithSubcategory(catID, subID string, questions []domain.RawQuestion) domain.QuestionBank {
	return domain.QuestionBank{Categories: map[string]domain.Category{
		catID: {
			ID:   catID,
			Name: catID,
			Subcategories: map[string]domain.Subcategory{
				subID: {ID: subID, Name: subID, Questions: questions},
			},
		},
	}}
}

func questionPool(prefix string, n int) []domain.RawQuestion {
	pool := make([]domain.RawQuestion, 0, n)
	for i := 0; i < n; i++ {
		pool = append(pool, domain.RawQuestion{
			Text:          fmt.Sprintf("%s-%d", prefix, i),
			CorrectAnswer: "right",
			Distractors:   []string{"wrong-1", "wrong-2", "wrong-3"},
		})
	}
	return pool
}
