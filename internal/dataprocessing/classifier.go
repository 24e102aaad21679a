package dataprocessing

import (
	"strings"

	"tradecli/pkg/contracts/domain"
)

// categoryRule assigns a category when the text contains any of its keywords
type categoryRule struct {
	category domain.Category
	keywords []string
}

// subCategoryRule assigns a sub-category when the text contains any of its keywords
type subCategoryRule struct {
	subCategory domain.SubCategory
	keywords    []string
}

// subCategoryRules is an ordered rule list with a fallback for no match
type subCategoryRules struct {
	rules    []subCategoryRule
	fallback domain.SubCategory
}

// categoryRules are evaluated in order; the first match wins. Glass must stay
// ahead of Steel because "SS" also matches words like GLASSWARE.
var categoryRules = []categoryRule{
	{domain.CategoryGlass, []string{"GLASS"}},
	{domain.CategoryWooden, []string{"WOOD", "WOODEN"}},
	{domain.CategorySteel, []string{"STEEL", "SS", "STAINLESS"}},
	{domain.CategoryPlastic, []string{"PLASTIC"}},
	{domain.CategoryElectronics, []string{"ELECTRONIC", "ELECTRICAL"}},
}

var subCategoryRulesByCategory = map[domain.Category]subCategoryRules{
	domain.CategoryGlass: {
		rules: []subCategoryRule{
			{domain.SubCategoryBorosilicate, []string{"BOROSILICATE"}},
			{domain.SubCategoryOpalware, []string{"OPAL", "OPALWARE"}},
		},
		fallback: domain.SubCategoryOtherGlass,
	},
	domain.CategoryWooden: {
		rules: []subCategoryRule{
			{domain.SubCategorySpoon, []string{"SPOON"}},
			{domain.SubCategoryFork, []string{"FORK"}},
			{domain.SubCategoryBowl, []string{"BOWL"}},
		},
		fallback: domain.SubCategoryOtherWooden,
	},
	domain.CategorySteel: {
		rules: []subCategoryRule{
			{domain.SubCategoryUtensils, []string{"UTENSIL", "SPOON", "FORK"}},
		},
		fallback: domain.SubCategoryOtherSteel,
	},
	domain.CategoryPlastic: {
		rules: []subCategoryRule{
			{domain.SubCategoryBottles, []string{"BOTTLE"}},
			{domain.SubCategoryContainers, []string{"CONTAINER"}},
		},
		fallback: domain.SubCategoryOtherPlastic,
	},
}

// ClassificationText joins the goods and HSN descriptions and upper-cases the result
func ClassificationText(goodsDescription, hsnDescription string) string {
	return strings.ToUpper(goodsDescription + " " + hsnDescription)
}

// AssignCategory returns the category of the first rule matching text, or Others.
// text is expected to be upper-cased already.
func AssignCategory(text string) domain.Category {
	for _, rule := range categoryRules {
		if containsAny(text, rule.keywords) {
			return rule.category
		}
	}
	return domain.CategoryOthers
}

// AssignSubCategory returns the sub-category for an already assigned category
func AssignSubCategory(category domain.Category, text string) domain.SubCategory {
	set, ok := subCategoryRulesByCategory[category]
	if !ok {
		return domain.SubCategoryOthers
	}
	for _, rule := range set.rules {
		if containsAny(text, rule.keywords) {
			return rule.subCategory
		}
	}
	return set.fallback
}

// Classify derives category and sub-category from a record's description fields
func Classify(goodsDescription, hsnDescription string) (domain.Category, domain.SubCategory) {
	text := ClassificationText(goodsDescription, hsnDescription)
	category := AssignCategory(text)
	return category, AssignSubCategory(category, text)
}

// ClassifyRecords sets Category and SubCategory on every record
func ClassifyRecords(records []domain.ShipmentRecord) {
	for i := range records {
		records[i].Category, records[i].SubCategory = Classify(records[i].GoodsDescription, records[i].HSNDescription)
	}
}

func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
