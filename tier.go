package tierarena

// Tier is a size class. Each tier has its own Arena, chunk size and
// ceiling on the (aligned) request size it will serve.
type Tier uint8

const (
	TierSmall Tier = iota
	TierMedium
	TierLarge

	numTiers = 3
)

const (
	MaxSmallAlloc  = 1 << 10 // 1 KiB
	SmallChunkSize = 1 << 12 // 4 KiB

	MaxMediumAlloc  = 1 << 20 // 1 MiB
	MediumChunkSize = 1 << 22 // 4 MiB

	MaxLargeAlloc  = 1 << 27 // 128 MiB
	LargeChunkSize = 1 << 29 // 512 MiB

	// MaxAllocSize is the largest request the allocator serves.
	MaxAllocSize = MaxLargeAlloc
)

// TierSpec describes one size class.
type TierSpec struct {
	Tier      Tier
	MaxAlloc  int
	ChunkSize int
}

var tierSpecs = [numTiers]TierSpec{
	{TierSmall, MaxSmallAlloc, SmallChunkSize},
	{TierMedium, MaxMediumAlloc, MediumChunkSize},
	{TierLarge, MaxLargeAlloc, LargeChunkSize},
}

// Tiers returns the tier table, smallest first.
func Tiers() []TierSpec {
	out := make([]TierSpec, numTiers)
	copy(out, tierSpecs[:])
	return out
}

func (t Tier) String() string {
	switch t {
	case TierSmall:
		return "small"
	case TierMedium:
		return "medium"
	case TierLarge:
		return "large"
	default:
		return "unknown"
	}
}

// tierFor picks the smallest tier whose ceiling covers an aligned size.
func tierFor(size int) (Tier, bool) {
	for _, spec := range tierSpecs {
		if size <= spec.MaxAlloc {
			return spec.Tier, true
		}
	}
	return 0, false
}
