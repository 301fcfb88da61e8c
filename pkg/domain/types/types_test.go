package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/pythia/pkg/domain/types"
)

func TestSourceTypeClassification(t *testing.T) {
	gt.Bool(t, types.SourceTypeArxiv.IsAcademic()).True()
	gt.Bool(t, types.SourceTypePubMed.IsAcademic()).True()
	gt.Bool(t, types.SourceTypeSemanticScholar.IsAcademic()).True()
	gt.Bool(t, types.SourceTypeWeb.IsAcademic()).False()
	gt.Bool(t, types.SourceTypeLocal.IsAcademic()).False()

	// Indexed sources drive the long cache TTL; the generic academic kind
	// does not.
	gt.Bool(t, types.SourceTypeArxiv.IsIndexed()).True()
	gt.Bool(t, types.SourceTypeAcademic.IsIndexed()).False()
	gt.Bool(t, types.SourceTypeWeb.IsIndexed()).False()
}

func TestDepthLevelNormalize(t *testing.T) {
	gt.Value(t, types.DepthLevel("deep").Normalize()).Equal(types.DepthDeep)
	gt.Value(t, types.DepthLevel("").Normalize()).Equal(types.DepthStandard)
	gt.Value(t, types.DepthLevel("bogus").Normalize()).Equal(types.DepthStandard)
}

func TestDepthLevelPerSourceLimit(t *testing.T) {
	gt.Value(t, types.DepthQuick.PerSourceLimit()).Equal(3)
	gt.Value(t, types.DepthStandard.PerSourceLimit()).Equal(5)
	gt.Value(t, types.DepthDeep.PerSourceLimit()).Equal(10)
}

func TestParseDepthLevel(t *testing.T) {
	d, err := types.ParseDepthLevel("quick")
	gt.NoError(t, err)
	gt.Value(t, d).Equal(types.DepthQuick)

	_, err = types.ParseDepthLevel("extreme")
	gt.Error(t, err)
}

func TestTierForScore(t *testing.T) {
	gt.Value(t, types.TierForScore(0.95)).Equal(types.TierAuthoritative)
	gt.Value(t, types.TierForScore(0.90)).Equal(types.TierAuthoritative)
	gt.Value(t, types.TierForScore(0.75)).Equal(types.TierEducational)
	gt.Value(t, types.TierForScore(0.55)).Equal(types.TierReputable)
	gt.Value(t, types.TierForScore(0.10)).Equal(types.TierUnverified)
}

func TestClaimVerdict(t *testing.T) {
	gt.Bool(t, types.VerdictUnsupported.Flagged()).True()
	gt.Bool(t, types.VerdictExaggerated.Flagged()).True()
	gt.Bool(t, types.VerdictVerified.Flagged()).False()
	gt.Bool(t, types.VerdictUnverifiable.Flagged()).False()

	gt.Value(t, types.ClaimVerdict("nonsense").Normalize()).Equal(types.VerdictUnverifiable)
	gt.Value(t, types.VerdictVerified.Normalize()).Equal(types.VerdictVerified)
}
