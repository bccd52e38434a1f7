package extract

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("InferUnit", func() {
	var (
		line string
		unit string
	)

	JustBeforeEach(func() {
		unit = InferUnit(line)
	})

	When("the line has a unit glued to the quantity", func() {
		BeforeEach(func() {
			line = "Rice 45 20kg"
		})

		It("should find it", func() {
			Expect(unit).To(Equal("kg"))
		})
	})

	When("the line has a spaced unit", func() {
		BeforeEach(func() {
			line = "Cooking Oil 120 3 L"
		})

		It("should find it", func() {
			Expect(unit).To(Equal("L"))
		})
	})

	When("the unit is uppercase", func() {
		BeforeEach(func() {
			line = "Milk 80 6 BOTTLES"
		})

		It("should match case-insensitively and singularize", func() {
			Expect(unit).To(Equal("bottle"))
		})
	})

	When("a piece variant appears", func() {
		BeforeEach(func() {
			line = "Eggs 8 30 pieces"
		})

		It("should normalize to pcs", func() {
			Expect(unit).To(Equal("pcs"))
		})
	})

	When("a name contains a unit letter without a boundary", func() {
		BeforeEach(func() {
			line = "Sugar 60 5"
		})

		It("should not match the g inside sugar", func() {
			Expect(unit).To(Equal("pcs"))
		})
	})

	When("no unit token appears", func() {
		BeforeEach(func() {
			line = "Soap 15 10"
		})

		It("should default to pcs", func() {
			Expect(unit).To(Equal("pcs"))
		})
	})
})

var _ = Describe("InferCategory", func() {
	var (
		name     string
		category string
	)

	JustBeforeEach(func() {
		category = InferCategory(name)
	})

	When("the name matches a staples keyword", func() {
		BeforeEach(func() {
			name = "Jasmine Rice"
		})

		It("should return staples", func() {
			Expect(category).To(Equal("staples"))
		})
	})

	When("the name matches a tagalog keyword", func() {
		BeforeEach(func() {
			name = "Sabon Panlaba"
		})

		It("should return household", func() {
			Expect(category).To(Equal("household"))
		})
	})

	When("the name matches keywords in two categories", func() {
		BeforeEach(func() {
			// "rice" (staples) and "water" (beverages); table order
			// decides.
			name = "Rice Water"
		})

		It("should pick the earlier table entry", func() {
			Expect(category).To(Equal("staples"))
		})
	})

	When("the name is case-mixed", func() {
		BeforeEach(func() {
			name = "COKE sakto"
		})

		It("should match case-insensitively", func() {
			Expect(category).To(Equal("beverages"))
		})
	})

	When("no keyword matches", func() {
		BeforeEach(func() {
			name = "Mystery Box"
		})

		It("should default to general", func() {
			Expect(category).To(Equal("general"))
		})
	})
})
