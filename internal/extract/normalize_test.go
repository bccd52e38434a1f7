package extract

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

var _ = Describe("Normalize", func() {
	var (
		raw        RawResult
		kind       Kind
		candidates []Candidate
		dropped    int
	)

	JustBeforeEach(func() {
		candidates, dropped = Normalize(raw, kind)
	})

	Describe("structured inventory guesses", func() {
		BeforeEach(func() {
			kind = KindInventory
		})

		When("entries are complete", func() {
			BeforeEach(func() {
				raw = RawResult{
					Items: []ItemGuess{
						{Name: "Rice", Quantity: 20.0, Unit: "kg", Price: 45.0, Category: "staples"},
						{Name: "Coke", Quantity: 24.0, Unit: "bottle", Price: 20.0, Category: "beverages"},
					},
				}
			})

			It("should keep them all", func() {
				Expect(candidates).To(HaveLen(2))
				Expect(dropped).To(BeZero())
			})

			It("should preserve order", func() {
				Expect(candidates[0].Inventory.Name).To(Equal("Rice"))
				Expect(candidates[1].Inventory.Name).To(Equal("Coke"))
			})
		})

		When("an entry has no name", func() {
			BeforeEach(func() {
				raw = RawResult{
					Items: []ItemGuess{
						{Name: "  ", Quantity: 3.0, Price: 10.0},
						{Name: "Soap", Quantity: 3.0, Price: 10.0},
					},
				}
			})

			It("should drop only that entry", func() {
				Expect(candidates).To(HaveLen(1))
				Expect(candidates[0].Inventory.Name).To(Equal("Soap"))
			})

			It("should count the drop", func() {
				Expect(dropped).To(Equal(1))
			})
		})

		When("the quantity is a numeric string", func() {
			BeforeEach(func() {
				raw = RawResult{
					Items: []ItemGuess{{Name: "Soap", Quantity: "12", Price: 15.0}},
				}
			})

			It("should parse it", func() {
				Expect(candidates[0].Inventory.Quantity).To(Equal(12.0))
			})
		})

		When("the quantity is garbage", func() {
			BeforeEach(func() {
				raw = RawResult{
					Items: []ItemGuess{{Name: "Soap", Quantity: "many", Price: 15.0}},
				}
			})

			It("should default to 1", func() {
				Expect(candidates[0].Inventory.Quantity).To(Equal(1.0))
			})
		})

		When("the unit is missing", func() {
			BeforeEach(func() {
				raw = RawResult{
					Items: []ItemGuess{{Name: "Soap", Quantity: 3.0, Price: 15.0}},
				}
			})

			It("should default to pcs", func() {
				Expect(candidates[0].Inventory.Unit).To(Equal("pcs"))
			})
		})

		When("the category is missing", func() {
			BeforeEach(func() {
				raw = RawResult{
					Items: []ItemGuess{{Name: "Zonrox", Quantity: 3.0, Price: 15.0}},
				}
			})

			It("should infer it from the name", func() {
				Expect(candidates[0].Inventory.Category).To(Equal("household"))
			})
		})

		When("the price is zero or unparseable", func() {
			BeforeEach(func() {
				raw = RawResult{
					Items: []ItemGuess{
						{Name: "Freebie", Quantity: 3.0, Price: 0.0},
						{Name: "Mystery", Quantity: 3.0, Price: "cheap"},
					},
				}
			})

			It("should drop both entries", func() {
				Expect(candidates).To(BeEmpty())
				Expect(dropped).To(Equal(2))
			})
		})
	})

	Describe("structured sales guesses", func() {
		BeforeEach(func() {
			kind = KindSales
			raw = RawResult{
				Transactions: []SaleGuess{
					{Item: "Rice", Quantity: 2.0, Price: 45.0},
					{Item: "", Quantity: 1.0, Price: 10.0},
				},
			}
		})

		It("should map valid entries", func() {
			Expect(candidates).To(HaveLen(1))
			Expect(candidates[0].Sale.ItemName).To(Equal("Rice"))
			Expect(candidates[0].Sale.UnitPrice).To(Equal(decimal.NewFromFloat(45.0)))
		})

		It("should count the nameless entry as dropped", func() {
			Expect(dropped).To(Equal(1))
		})
	})

	Describe("raw text fallback", func() {
		BeforeEach(func() {
			kind = KindInventory
			raw = RawResult{
				RawText: "Rice 45 20kg\n\nnot a record\nSugar 60 5kg\n",
			}
		})

		It("should parse the parseable lines in order", func() {
			Expect(candidates).To(HaveLen(2))
			Expect(candidates[0].Inventory.Name).To(Equal("Rice"))
			Expect(candidates[1].Inventory.Name).To(Equal("Sugar"))
		})

		It("should skip blank lines without counting them", func() {
			Expect(dropped).To(Equal(1))
		})
	})

	Describe("empty input", func() {
		BeforeEach(func() {
			kind = KindInventory
			raw = RawResult{}
		})

		It("should return nothing", func() {
			Expect(candidates).To(BeEmpty())
			Expect(dropped).To(BeZero())
		})
	})
})
