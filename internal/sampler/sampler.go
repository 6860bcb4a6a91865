// Package sampler derives randomized, de-duplicated question sets from a
// hierarchical question bank. All functions are pure given the injected
// random source, which keeps them deterministic under test.
package sampler

import (
	"math/rand"
	"sort"

	"trivia-quiz-service/internal/domain"
)

// Default sample sizes per scope.
const (
	DefaultSubcategoryCount = 10
	DefaultCategoryCount    = 20
	DefaultAllCount         = 30
)

// Sampler draws question sets from a bank. AllowDuplicates enables the
// with-replacement backfill when the whole scope holds fewer valid
// questions than requested; when false the result is simply shorter.
type Sampler struct {
	rng             *rand.Rand
	AllowDuplicates bool
}

// New returns a Sampler backed by the given random source.
func New(rng *rand.Rand) *Sampler {
	return &Sampler{rng: rng}
}

// Subcategory samples up to n valid questions from one subcategory.
// A pool smaller than n yields the whole pool; an empty pool yields
// domain.ErrNoQuestions so the caller can render a "no questions" state.
func (s *Sampler) Subcategory(bank domain.QuestionBank, categoryID, subcategoryID string, n int) ([]domain.SampledQuestion, error) {
	category, ok := bank.Categories[categoryID]
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}
	subcategory, ok := category.Subcategories[subcategoryID]
	if !ok {
		return nil, domain.ErrSubcategoryNotFound
	}

	pool := validQuestions(category, subcategory)
	if len(pool) == 0 {
		return nil, domain.ErrNoQuestions
	}
	return s.drawWithoutReplacement(pool, n), nil
}

// Category samples up to n questions across all subcategories of one
// category, balancing contributions per subcategory: base = n/k with the
// first n%k subcategories (in sorted ID order) taking one extra. Groups
// short of their quota are compensated by backfilling from the unused
// remainder of the others.
func (s *Sampler) Category(bank domain.QuestionBank, categoryID string, n int) ([]domain.SampledQuestion, error) {
	category, ok := bank.Categories[categoryID]
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}

	groups := make([][]domain.SampledQuestion, 0, len(category.Subcategories))
	for _, subID := range sortedKeys(category.Subcategories) {
		pool := validQuestions(category, category.Subcategories[subID])
		if len(pool) > 0 {
			groups = append(groups, pool)
		}
	}
	if len(groups) == 0 {
		return nil, domain.ErrNoQuestions
	}

	k := len(groups)
	base := n / k
	extra := n % k
	quotas := make([]int, k)
	for i := range quotas {
		quotas[i] = base
		if i < extra {
			quotas[i]++
		}
	}
	return s.drawBalanced(groups, quotas, n), nil
}

// All samples up to n questions across every category in the bank. Each
// category (its pool spanning all of its subcategories) gets a quota of
// ceil(n/k) capped by availability, then the combined pick is shuffled
// and trimmed to n with the same backfill rules as Category.
func (s *Sampler) All(bank domain.QuestionBank, n int) ([]domain.SampledQuestion, error) {
	groups := make([][]domain.SampledQuestion, 0, len(bank.Categories))
	for _, catID := range sortedKeys(bank.Categories) {
		category := bank.Categories[catID]
		var pool []domain.SampledQuestion
		for _, subID := range sortedKeys(category.Subcategories) {
			pool = append(pool, validQuestions(category, category.Subcategories[subID])...)
		}
		if len(pool) > 0 {
			groups = append(groups, pool)
		}
	}
	if len(groups) == 0 {
		return nil, domain.ErrNoQuestions
	}

	k := len(groups)
	quota := (n + k - 1) / k
	quotas := make([]int, k)
	for i := range quotas {
		quotas[i] = quota
	}
	return s.drawBalanced(groups, quotas, n), nil
}

// drawBalanced takes min(quota, available) from each group, backfills any
// shortfall from the pooled remainders without replacement, and as a last
// resort (AllowDuplicates only) pads with replacement from the selection.
// The result is shuffled and never longer than n.
func (s *Sampler) drawBalanced(groups [][]domain.SampledQuestion, quotas []int, n int) []domain.SampledQuestion {
	var selected []domain.SampledQuestion
	var remainder []domain.SampledQuestion

	for i, pool := range groups {
		take := quotas[i]
		if take > len(pool) {
			take = len(pool)
		}
		shuffled := s.shuffled(pool)
		selected = append(selected, shuffled[:take]...)
		remainder = append(remainder, shuffled[take:]...)
	}

	if len(selected) < n && len(remainder) > 0 {
		need := n - len(selected)
		if need > len(remainder) {
			need = len(remainder)
		}
		extra := s.drawWithoutReplacement(remainder, need)
		selected = append(selected, extra...)
	}

	if len(selected) < n && s.AllowDuplicates && len(selected) > 0 {
		for len(selected) < n {
			selected = append(selected, selected[s.rng.Intn(len(selected))])
		}
	}

	selected = s.shuffled(selected)
	if len(selected) > n {
		selected = selected[:n]
	}
	return selected
}

// drawWithoutReplacement picks min(n, len(pool)) questions uniformly by
// repeatedly removing a random index from a copy of the pool. Every
// question has equal selection probability and none repeats.
func (s *Sampler) drawWithoutReplacement(pool []domain.SampledQuestion, n int) []domain.SampledQuestion {
	remaining := make([]domain.SampledQuestion, len(pool))
	copy(remaining, pool)

	if n > len(remaining) {
		n = len(remaining)
	}
	picked := make([]domain.SampledQuestion, 0, n)
	for len(picked) < n {
		i := s.rng.Intn(len(remaining))
		picked = append(picked, remaining[i])
		remaining[i] = remaining[len(remaining)-1]
		remaining = remaining[:len(remaining)-1]
	}
	return picked
}

// shuffled returns a fresh uniformly random permutation of qs using a
// swap-based Fisher-Yates pass. Sorting with a random comparator does not
// produce a uniform permutation and must not be used here.
func (s *Sampler) shuffled(qs []domain.SampledQuestion) []domain.SampledQuestion {
	out := make([]domain.SampledQuestion, len(qs))
	copy(out, qs)
	for i := len(out) - 1; i > 0; i-- {
		j := s.rng.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Options builds the presentation-time answer choices for a question:
// the correct answer and its three distractors in Fisher-Yates order.
func Options(q domain.SampledQuestion, rng *rand.Rand) []domain.Option {
	opts := make([]domain.Option, 0, 4)
	opts = append(opts, domain.Option{Text: q.CorrectAnswer, Correct: true})
	for _, d := range q.Distractors {
		opts = append(opts, domain.Option{Text: d})
	}
	for i := len(opts) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		opts[i], opts[j] = opts[j], opts[i]
	}
	return opts
}

func validQuestions(category domain.Category, subcategory domain.Subcategory) []domain.SampledQuestion {
	out := make([]domain.SampledQuestion, 0, len(subcategory.Questions))
	for _, q := range subcategory.Questions {
		if !q.Valid() {
			continue
		}
		out = append(out, domain.SampledQuestion{
			RawQuestion:     q,
			CategoryID:      category.ID,
			CategoryName:    category.Name,
			SubcategoryID:   subcategory.ID,
			SubcategoryName: subcategory.Name,
		})
	}
	return out
}

// sortedKeys fixes map iteration order so quota assignment is stable.
func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
