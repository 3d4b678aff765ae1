package tierarena_test

import (
	"fmt"

	"github.com/pavanmanishd/tierarena"
)

func ExampleAllocator() {
	a := tierarena.New()
	defer a.Destroy()

	buf := a.Alloc(100)
	tier, _ := a.TierOf(buf)
	fmt.Println(len(buf), tier)

	copy(buf, "hello medium")
	buf = a.Realloc(buf, 2000)
	tier, _ = a.TierOf(buf)
	fmt.Println(len(buf), tier, string(buf[:12]))

	// Output:
	// 100 small
	// 2000 medium hello medium
}

func ExampleAllocator_Free() {
	a := tierarena.New()
	defer a.Destroy()

	first := a.Alloc(64)
	addr := &first[0]
	a.Free(first)

	// The freed block is reused whole by the next request that fits.
	second := a.Alloc(48)
	fmt.Println(&second[0] == addr, len(second))

	// Output:
	// true 48
}

func ExampleAllocator_Metrics() {
	a := tierarena.New()
	defer a.Destroy()

	a.Alloc(100) // rounded up to 104
	a.Alloc(5000)

	m := a.Metrics()
	fmt.Println(m.NumChunks, m.SizeInUse)
	for _, tm := range m.Tiers {
		fmt.Printf("%s: %d chunk(s)\n", tm.Tier, tm.NumChunks)
	}

	// Output:
	// 2 5104
	// small: 1 chunk(s)
	// medium: 1 chunk(s)
	// large: 0 chunk(s)
}

func ExampleNewSlice() {
	a := tierarena.New()
	defer a.Destroy()

	ids := tierarena.NewSlice[uint32](a, 4)
	ids[0] = 7
	ids = tierarena.GrowSlice(a, ids, 8)
	fmt.Println(len(ids), ids[0], ids[7])
	tierarena.FreeSlice(a, ids)

	// Output:
	// 8 7 0
}
