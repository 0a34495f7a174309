package rotation

import (
	"fmt"
	"math/rand/v2"

	"github.com/Arsalank7862/caffeine-chronicles/internal/bank"
	"github.com/Arsalank7862/caffeine-chronicles/internal/services"
)

// Options controls episode selection.
type Options struct {
	// ShopInterval makes every Nth episode carry a shop recommendation.
	// Must be at least 1.
	ShopInterval int
	// Rand supplies the randomness source. Nil uses the shared global
	// source; tests inject a seeded one for reproducibility.
	Rand *rand.Rand
}

func (o Options) intN(n int) int {
	if o.Rand != nil {
		return o.Rand.IntN(n)
	}
	return rand.IntN(n)
}

// Select produces the next episode from the content bank and the rotation
// state, returning the updated state alongside it. It is pure apart from
// randomness: persistence is the caller's responsibility.
//
// Facts are sampled without replacement from the indices unused this cycle;
// when the cycle is exhausted the used set resets transparently and the same
// invocation still yields an episode. The shop catalog rotates independently
// and only contributes when the new episode number lands on the interval.
func Select(b *bank.Bank, state State, opts Options) (Episode, State, error) {
	if opts.ShopInterval < 1 {
		return Episode{}, State{}, services.Wrap(services.ErrConfiguration, "select", "",
			fmt.Sprintf("shop interval must be at least 1, got %d", opts.ShopInterval), nil)
	}
	if b == nil || b.Facts.Len() == 0 {
		return Episode{}, State{}, services.Wrap(services.ErrConfiguration, "select", "", "fact catalog is empty", nil)
	}
	if b.Shops.Len() == 0 {
		return Episode{}, State{}, services.Wrap(services.ErrConfiguration, "select", "", "shop catalog is empty", nil)
	}

	next := state.Clone()
	next.Episode = state.Episode + 1

	factIndex, usedFacts := pickUnused(b.Facts.Len(), next.UsedFacts, opts.intN)
	next.UsedFacts = usedFacts
	factText, err := b.Facts.Item(factIndex)
	if err != nil {
		return Episode{}, State{}, services.Wrap(services.ErrConfiguration, "select", "fact", "", err)
	}

	episode := Episode{
		Number: next.Episode,
		Kind:   KindFactOnly,
		Fact:   ContentItem{Index: factIndex, Text: factText},
	}

	if next.Episode%opts.ShopInterval == 0 {
		shopIndex, usedShops := pickUnused(b.Shops.Len(), next.UsedShops, opts.intN)
		next.UsedShops = usedShops
		shopText, err := b.Shops.Item(shopIndex)
		if err != nil {
			return Episode{}, State{}, services.Wrap(services.ErrConfiguration, "select", "shop", "", err)
		}
		episode.Kind = KindFactWithShop
		episode.Shop = &ContentItem{Index: shopIndex, Text: shopText}
	}

	return episode, next, nil
}

// pickUnused samples one index uniformly from those not yet used this
// cycle. When every index has been used the cycle resets first, so the
// whole catalog becomes eligible again, including the most recent pick.
func pickUnused(n int, used []int, intN func(int) int) (int, []int) {
	usedSet := make(map[int]struct{}, len(used))
	for _, i := range used {
		usedSet[i] = struct{}{}
	}

	remaining := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if _, ok := usedSet[i]; !ok {
			remaining = append(remaining, i)
		}
	}

	if len(remaining) == 0 {
		// Cycle complete: start fresh.
		used = nil
		remaining = remaining[:0]
		for i := 0; i < n; i++ {
			remaining = append(remaining, i)
		}
	}

	choice := remaining[intN(len(remaining))]
	next := make([]int, 0, len(used)+1)
	next = append(next, used...)
	next = append(next, choice)
	return choice, next
}
