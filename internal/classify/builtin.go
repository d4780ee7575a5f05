package classify

import "github.com/andresuchdata/salesperf/backend-go/internal/domain"

// Built-in cohort keys.
const (
	CohortActiv    = "activ"
	CohortMagnatec = "magnatec"
	CohortCRB      = "crbTurbomax"
	CohortAutocare = "autocare"
	CohortPower1   = "power1"
)

// Power1Products is the exact SKU list of the Power1 cohort.
var Power1Products = []string{
	"POWER1 4T 10W-30, 10X.9L MK",
	"POWER1 4T 10W-30, 10X1L MK",
	"POWER1 4T 15W-40, 10X1L MK",
	"POWER1 CRUISE4T 20W50 10X1.2HMK",
	"POWER1 CRUISE 4T20W-50,10X1L",
	"POWER1 ULTIMATE4T10W-40,6X1LMK",
	"POWER1CRUISE4T 15W50,4X2.5L MK",
}

// ExcludedProducts are accessories that never count as core volume.
var ExcludedProducts = []string{
	"TW SHINER SPONGE",
	"CHAIN LUBE",
	"CHAIN CLEANER",
	"BRAKE CLEANER",
	"FUELINJECT",
	"ANTI RUST LUB SPRAY",
	"THROTTLEBODYCLEANER",
	"MICRO FBR CLOTH",
	"AIOHELMET CLEANER",
	"TW SHINER 3 IN 1",
}

// Activ matches ACTIV brands except ACTIV ESSENTIAL.
func Activ() domain.Cohort {
	return domain.Cohort{
		Key:          CohortActiv,
		Field:        domain.FieldBrand,
		IncludeTerms: []string{"ACTIV"},
		ExcludeTerms: []string{"ACTIV ESSENTIAL"},
		MatchMode:    domain.MatchContains,
	}
}

func Magnatec() domain.Cohort {
	return domain.Cohort{
		Key:          CohortMagnatec,
		Field:        domain.FieldBrand,
		IncludeTerms: []string{"MAGNATEC", "MAGNTEC SUV", "MAGNATEC DIESEL"},
		MatchMode:    domain.MatchContains,
	}
}

func CRBTurbomax() domain.Cohort {
	return domain.Cohort{
		Key:          CohortCRB,
		Field:        domain.FieldBrand,
		IncludeTerms: []string{"CRB TURBOMAX"},
		MatchMode:    domain.MatchContains,
	}
}

func Autocare() domain.Cohort {
	return domain.Cohort{
		Key:          CohortAutocare,
		Field:        domain.FieldBrand,
		IncludeTerms: []string{"AUTO CARE EXTERIOR", "AUTO CARE MAINTENANCE"},
		MatchMode:    domain.MatchContains,
	}
}

// Power1 matches product names exactly against Power1Products. No brand check.
func Power1() domain.Cohort {
	return domain.Cohort{
		Key:          CohortPower1,
		Field:        domain.FieldProduct,
		IncludeTerms: append([]string(nil), Power1Products...),
		MatchMode:    domain.MatchExactList,
	}
}

// Builtin returns a built-in cohort by key.
func Builtin(key string) (domain.Cohort, bool) {
	switch key {
	case CohortActiv:
		return Activ(), true
	case CohortMagnatec:
		return Magnatec(), true
	case CohortCRB:
		return CRBTurbomax(), true
	case CohortAutocare:
		return Autocare(), true
	case CohortPower1:
		return Power1(), true
	}
	return domain.Cohort{}, false
}

var (
	autocareRule = Compile(Autocare())
	excludedRule = Compile(domain.Cohort{
		Key:          "excludedProducts",
		Field:        domain.FieldProduct,
		IncludeTerms: ExcludedProducts,
		MatchMode:    domain.MatchContains,
	})
)

// IsCoreProduct reports whether line counts as core volume: not an autocare brand
// and not on the excluded product list. Every 9-liter rule goes through here.
func IsCoreProduct(line domain.TransactionLine) bool {
	return !autocareRule.Match(line) && !excludedRule.Match(line)
}
