package exam

import (
	"fmt"
	"slices"
)

// AnswerRequest is one planned call to the answer engine.
type AnswerRequest struct {
	Images    [][]byte
	Block     Block
	Prompt    string
	CarryOver bool
}

// Partition splits the page numbers into answerable blocks. When set is not fully
// on the page, it is left out and spansForward is true; otherwise it is appended as
// one combined block. Set members never appear as singletons. Duplicates in numbers
// are kept as separate singletons.
func Partition(numbers, set []int) (blocks []Block, spansForward bool) {
	for _, n := range numbers {
		if slices.Contains(set, n) {
			continue
		}
		blocks = append(blocks, Block{n})
	}
	if len(set) == 0 {
		return blocks, false
	}
	if !containsAll(numbers, set) {
		return blocks, true
	}
	return append(blocks, Block(slices.Clone(set))), false
}

// Plan turns one analyzed page into answer requests and the session for the next page.
// The carried-over group of the previous page, if any, is returned separately: it is
// answered before anything else on this page and its numbers are dropped from the page.
// The carry-over slot is always emptied, whatever this page contains.
func Plan(prior Session, image []byte, pa PageAnalysis, tc TypeChange, t Templates) (carried *AnswerRequest, reqs []AnswerRequest, next Session) {
	next = Session{Prompt: prior.Prompt}
	numbers := slices.Clone(pa.Numbers)

	if co := prior.Pending; co != nil {
		next.Prompt = next.Prompt.ForSet(co.Set, co.TypeChange, t)
		block := Block(slices.Clone(co.Set))
		carried = &AnswerRequest{
			Images:    [][]byte{co.Image, image},
			Block:     block,
			Prompt:    groupPrompt(block, next.Prompt.Active),
			CarryOver: true,
		}
		numbers = slices.DeleteFunc(numbers, func(n int) bool { return slices.Contains(co.Set, n) })
	}

	blocks, spansForward := Partition(numbers, pa.Set)
	if spansForward {
		next.Pending = &CarryOver{
			Image:      image,
			Set:        slices.Clone(pa.Set),
			TypeChange: tc,
		}
	}

	reqs = make([]AnswerRequest, 0, len(blocks))
	for _, b := range blocks {
		next.Prompt = next.Prompt.ForBlock(b[0], tc, t)
		reqs = append(reqs, AnswerRequest{
			Images: [][]byte{image},
			Block:  b,
			Prompt: blockPrompt(b, next.Prompt.Active),
		})
	}
	return carried, reqs, next
}

func blockPrompt(b Block, instruction string) string {
	if len(b) == 1 {
		return fmt.Sprintf("請回答第%d題 並忽略其他所有題目，%s", b[0], instruction)
	}
	return groupPrompt(b, instruction)
}

func groupPrompt(b Block, instruction string) string {
	return fmt.Sprintf("請回答第%s題 並忽略其他所有題目，%s", b, instruction)
}
