package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tradecli/pkg/contracts/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		goods   string
		hsn     string
		wantCat domain.Category
		wantSub domain.SubCategory
	}{
		{"borosilicate glass", "Borosilicate Glass Bowl", "", domain.CategoryGlass, domain.SubCategoryBorosilicate},
		{"opal glass", "glass dinner set", "Opal ware", domain.CategoryGlass, domain.SubCategoryOpalware},
		{"opalware glass", "Opalware GLASS plates", "", domain.CategoryGlass, domain.SubCategoryOpalware},
		{"plain glass", "Glass tumbler", "", domain.CategoryGlass, domain.SubCategoryOtherGlass},
		{"borosilicate wins over opal", "opal borosilicate glass", "", domain.CategoryGlass, domain.SubCategoryBorosilicate},
		{"wooden spoon", "Wooden Spoon", "", domain.CategoryWooden, domain.SubCategorySpoon},
		{"wood fork", "", "Articles of wood: fork", domain.CategoryWooden, domain.SubCategoryFork},
		{"wooden bowl", "wooden salad bowl", "", domain.CategoryWooden, domain.SubCategoryBowl},
		{"spoon before bowl", "wooden bowl and spoon", "", domain.CategoryWooden, domain.SubCategorySpoon},
		{"other wooden", "Woodwork tray", "", domain.CategoryWooden, domain.SubCategoryOtherWooden},
		{"steel utensil", "Steel utensils", "", domain.CategorySteel, domain.SubCategoryUtensils},
		{"stainless fork", "Stainless fork", "", domain.CategorySteel, domain.SubCategoryUtensils},
		{"ss spoon", "SS spoon", "", domain.CategorySteel, domain.SubCategoryUtensils},
		{"other steel", "steel rod", "", domain.CategorySteel, domain.SubCategoryOtherSteel},
		{"plastic bottle", "Plastic bottle 1L", "", domain.CategoryPlastic, domain.SubCategoryBottles},
		{"plastic container", "plastic food container", "", domain.CategoryPlastic, domain.SubCategoryContainers},
		{"bottle before container", "plastic bottle container", "", domain.CategoryPlastic, domain.SubCategoryBottles},
		{"other plastic", "Plastic hanger", "", domain.CategoryPlastic, domain.SubCategoryOtherPlastic},
		{"electronic", "Electronic scale", "", domain.CategoryElectronics, domain.SubCategoryOthers},
		{"electrical via hsn", "Kettle", "Electrical appliances", domain.CategoryElectronics, domain.SubCategoryOthers},
		{"others", "Cotton napkins", "Textiles", domain.CategoryOthers, domain.SubCategoryOthers},
		{"empty fields", "", "", domain.CategoryOthers, domain.SubCategoryOthers},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat, sub := Classify(tt.goods, tt.hsn)
			assert.Equal(t, tt.wantCat, cat)
			assert.Equal(t, tt.wantSub, sub)
		})
	}
}

func TestClassify_Precedence(t *testing.T) {
	cat, _ := Classify("Glass jar with steel lid", "")
	assert.Equal(t, domain.CategoryGlass, cat)

	cat, _ = Classify("", "STEEL AND GLASS")
	assert.Equal(t, domain.CategoryGlass, cat)

	cat, _ = Classify("wooden handle steel knife", "")
	assert.Equal(t, domain.CategoryWooden, cat)

	cat, _ = Classify("plastic coated electrical wire", "")
	assert.Equal(t, domain.CategoryPlastic, cat)
}

func TestClassify_SubstringMatching(t *testing.T) {
	// "SS" is matched anywhere, so unrelated words containing it become Steel
	cat, sub := Classify("Brass lamp", "")
	assert.Equal(t, domain.CategorySteel, cat)
	assert.Equal(t, domain.SubCategoryOtherSteel, sub)

	cat, _ = Classify("Glassware", "")
	assert.Equal(t, domain.CategoryGlass, cat, "glass rule is checked before the SS rule")

	cat, _ = Classify("Plywood board", "")
	assert.Equal(t, domain.CategoryWooden, cat)
}

func TestClassify_JoinsFieldsWithSpace(t *testing.T) {
	// Fields are joined with a space, so keywords cannot span the boundary
	cat, _ := Classify("GLA", "SS")
	assert.Equal(t, domain.CategorySteel, cat)
}

func TestClassify_SubCategoryConsistency(t *testing.T) {
	inputs := []string{
		"Borosilicate Glass Bowl", "opal", "wood spoon fork bowl", "SS fork",
		"plastic container", "electronic", "", "misc", "glass steel wood plastic",
		"STAINLESS UTENSIL", "wooden", "Opalware", "electrical bottle",
	}

	for _, goods := range inputs {
		for _, hsn := range inputs {
			cat, sub := Classify(goods, hsn)
			assert.Contains(t, domain.Categories(), cat, "category %q not in closed set", cat)
			assert.True(t, sub.BelongsTo(cat), "sub-category %q inconsistent with %q", sub, cat)
		}
	}
}

func TestAssignSubCategory_UnknownCategory(t *testing.T) {
	assert.Equal(t, domain.SubCategoryOthers, AssignSubCategory(domain.Category("Ceramic"), "BOWL"))
}

func TestClassifyRecords(t *testing.T) {
	records := []domain.ShipmentRecord{
		{GoodsDescription: "Borosilicate Glass Bowl"},
		{GoodsDescription: "Plastic Bottle", HSNDescription: "Articles for conveyance"},
		{HSNDescription: "wooden cutlery: spoon"},
	}

	ClassifyRecords(records)

	assert.Equal(t, domain.CategoryGlass, records[0].Category)
	assert.Equal(t, domain.SubCategoryBorosilicate, records[0].SubCategory)
	assert.Equal(t, domain.CategoryPlastic, records[1].Category)
	assert.Equal(t, domain.SubCategoryBottles, records[1].SubCategory)
	assert.Equal(t, domain.CategoryWooden, records[2].Category)
	assert.Equal(t, domain.SubCategorySpoon, records[2].SubCategory)
}
