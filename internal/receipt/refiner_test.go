package receipt

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Refiner", func() {
	var (
		vocab     *Vocabulary
		matcher   *Matcher
		refiner   *Refiner
		fieldName string
		header    string
		valueLine string
		values    []Value
		err       error
	)

	BeforeEach(func() {
		vocab = DefaultVocabulary()
		matcher = NewMatcher(vocab)
		refiner = NewRefiner(vocab)
	})

	JustBeforeEach(func() {
		field, ok := vocab.Lookup(fieldName)
		Expect(ok).To(BeTrue())
		values, err = refiner.Refine(field, matcher.Match(header), valueLine)
	})

	text := func() []string {
		out := make([]string, len(values))
		for i, v := range values {
			out[i] = v.Text
		}
		return out
	}

	Describe("payment timestamp", func() {
		BeforeEach(func() {
			fieldName = FieldPaidAt
			header = "결제일자"
		})

		When("the value line holds a timestamp", func() {
			BeforeEach(func() {
				valueLine = "2022/01/14 2022-01-14 12:31:05 (금)"
			})

			It("extracts it", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(text()).To(Equal([]string{"2022-01-14 12:31:05"}))
			})
		})

		When("the value line holds two timestamps", func() {
			BeforeEach(func() {
				valueLine = "2022-01-14 12:31:05 2022-01-15 08:00:00"
			})

			It("keeps the first", func() {
				Expect(text()).To(Equal([]string{"2022-01-14 12:31:05"}))
			})
		})

		When("there is no timestamp", func() {
			BeforeEach(func() {
				valueLine = "2022-01-14"
			})

			It("returns ErrNoTimestamp", func() {
				Expect(err).To(MatchError(ErrNoTimestamp))
				Expect(values).To(BeEmpty())
			})
		})
	})

	Describe("store and representative names", func() {
		BeforeEach(func() {
			fieldName = FieldStoreName
			header = "판매자 상호 대표자명"
		})

		When("the representative is separated by a comma", func() {
			BeforeEach(func() {
				valueLine = "서울상회 홍,길동"
			})

			It("strips the comma from the representative", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(values).To(HaveLen(2))
				Expect(values[0].Field.Name).To(Equal(FieldStoreName))
				Expect(values[1].Field.Name).To(Equal(FieldRepresentative))
				Expect(text()).To(Equal([]string{"서울상회", "홍길동"}))
			})
		})

		When("several representatives are listed", func() {
			BeforeEach(func() {
				valueLine = "주식회사 서울상회 홍길동, 김철수"
			})

			It("takes comma-count-plus-one trailing tokens", func() {
				Expect(text()).To(Equal([]string{"주식회사 서울상회", "홍길동 김철수"}))
			})
		})

		When("there is no comma", func() {
			BeforeEach(func() {
				valueLine = "서울상회홍길동"
			})

			It("takes the last three runes as the representative", func() {
				Expect(text()).To(Equal([]string{"서울상회", "홍길동"}))
			})
		})

		When("the representative name is longer than three runes", func() {
			BeforeEach(func() {
				valueLine = "서울상회 남궁길동"
			})

			It("splits at three runes anyway", func() {
				Expect(text()).To(Equal([]string{"서울상회 남", "궁길동"}))
			})
		})

		When("only the representative label is present", func() {
			BeforeEach(func() {
				fieldName = FieldRepresentative
				header = "대표자명"
				valueLine = "서울상회 홍길동"
			})

			It("still emits both names", func() {
				Expect(text()).To(Equal([]string{"서울상회", "홍길동"}))
			})
		})
	})

	Describe("positional fields", func() {
		BeforeEach(func() {
			header = "승인번호 카드종류 카드번호"
			valueLine = "12345678 신용 1234-56**-****-7890"
		})

		When("the label is first", func() {
			BeforeEach(func() {
				fieldName = FieldApprovalNumber
			})

			It("takes the first token", func() {
				Expect(text()).To(Equal([]string{"12345678"}))
			})
		})

		When("the label is third", func() {
			BeforeEach(func() {
				fieldName = FieldCardNumber
			})

			It("takes the third token", func() {
				Expect(text()).To(Equal([]string{"1234-56**-****-7890"}))
			})
		})

		When("the value line is too short", func() {
			BeforeEach(func() {
				fieldName = FieldCardNumber
				valueLine = "12345678"
			})

			It("returns ErrNoToken", func() {
				Expect(err).To(MatchError(ErrNoToken))
			})
		})
	})

	Describe("amount", func() {
		BeforeEach(func() {
			fieldName = FieldAmount
			header = "승인번호 카드종류 금액 부가세 합계"
		})

		When("the value line mixes tokens and non-breaking spaces", func() {
			BeforeEach(func() {
				valueLine = "12345678 신용 10,000\u00a0 1,000\u00a0 11,000\u00a0"
			})

			It("returns the first non-empty non-breaking-space segment", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(text()).To(Equal([]string{"12345678신용10,000"}))
			})
		})

		When("the digits are spread over the amount columns", func() {
			BeforeEach(func() {
				header = "금액"
				valueLine = "1 0 , 0 0 0\u00a0원"
			})

			It("joins them", func() {
				Expect(text()).To(Equal([]string{"10,000"}))
			})
		})

		When("nothing is left after splitting", func() {
			BeforeEach(func() {
				header = "금액"
				valueLine = "\u00a0 \u00a0 "
			})

			It("returns ErrNoAmount", func() {
				Expect(err).To(MatchError(ErrNoAmount))
			})
		})
	})

	Describe("tax and total", func() {
		BeforeEach(func() {
			valueLine = "ignored"
		})

		When("the value sits beside the label", func() {
			BeforeEach(func() {
				fieldName = FieldTax
				header = "부가세 1, 000"
			})

			It("reads it from the header line", func() {
				Expect(text()).To(Equal([]string{"1,000"}))
			})
		})

		When("the label ends the line", func() {
			BeforeEach(func() {
				fieldName = FieldTotal
				header = "금액 부가세 합계"
			})

			It("returns the label text", func() {
				Expect(text()).To(Equal([]string{"합계"}))
			})
		})
	})
})

var _ = Describe("isPlaceholder", func() {
	It("matches the echoed caption", func() {
		Expect(isPlaceholder("백 천 원\u00a0백 천 원\u00a0")).To(BeTrue())
	})

	It("ignores real amounts", func() {
		Expect(isPlaceholder("10,000\u00a0")).To(BeFalse())
	})
})
