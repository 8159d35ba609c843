package export

import (
	"bytes"
	"encoding/csv"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/xuri/excelize/v2"
)

var _ = Describe("Sheet", func() {
	var sheet Sheet

	BeforeEach(func() {
		sheet = Sheet{
			Name:   "receipts",
			Header: []string{"파일명", "판매자 상호", "금액"},
			Rows: [][]string{
				{"1.pdf", "서울상회", "10,000"},
				{"2.pdf", "부산, 식당", ""},
			},
		}
	})

	Describe("CSV", func() {
		var (
			data []byte
			err  error
		)

		JustBeforeEach(func() {
			data, err = sheet.CSV()
		})

		It("does not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("starts with the UTF-8 byte order mark", func() {
			Expect(data).To(HavePrefix(string(BOM)))
		})

		It("writes the header then the rows", func() {
			records, readErr := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, BOM))).ReadAll()
			Expect(readErr).NotTo(HaveOccurred())
			Expect(records).To(Equal([][]string{
				{"파일명", "판매자 상호", "금액"},
				{"1.pdf", "서울상회", "10,000"},
				{"2.pdf", "부산, 식당", ""},
			}))
		})

		When("a row is short", func() {
			BeforeEach(func() {
				sheet.Rows = append(sheet.Rows, []string{"3.pdf"})
			})

			It("returns an error", func() {
				Expect(err).To(MatchError(ContainSubstring("row 3 has 1 cells")))
			})
		})

		When("there are no rows", func() {
			BeforeEach(func() {
				sheet.Rows = nil
			})

			It("writes only the header", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(string(bytes.TrimPrefix(data, BOM))).To(Equal("파일명,판매자 상호,금액\n"))
			})
		})
	})

	Describe("XLSX", func() {
		var (
			data []byte
			err  error
		)

		JustBeforeEach(func() {
			data, err = sheet.XLSX()
		})

		It("does not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("writes the rows to the named sheet", func() {
			f, openErr := excelize.OpenReader(bytes.NewReader(data))
			Expect(openErr).NotTo(HaveOccurred())
			defer f.Close()

			Expect(f.GetSheetList()).To(Equal([]string{"receipts"}))

			rows, rowsErr := f.GetRows("receipts")
			Expect(rowsErr).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(3))
			Expect(rows[0]).To(Equal([]string{"파일명", "판매자 상호", "금액"}))
			Expect(rows[1]).To(Equal([]string{"1.pdf", "서울상회", "10,000"}))
			Expect(rows[2][1]).To(Equal("부산, 식당"))
		})

		When("the sheet has no name", func() {
			BeforeEach(func() {
				sheet.Name = ""
			})

			It("keeps the default sheet", func() {
				f, openErr := excelize.OpenReader(bytes.NewReader(data))
				Expect(openErr).NotTo(HaveOccurred())
				defer f.Close()
				Expect(f.GetSheetList()).To(Equal([]string{"Sheet1"}))
			})
		})

		When("the name is not a valid sheet name", func() {
			BeforeEach(func() {
				sheet.Name = "2024/10/18 [법인카드] 영수증: 3분기 추가 정리분 최종"
			})

			It("does not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("cleans the name", func() {
				f, openErr := excelize.OpenReader(bytes.NewReader(data))
				Expect(openErr).NotTo(HaveOccurred())
				defer f.Close()
				Expect(f.GetSheetList()).To(Equal([]string{"2024_10_18 _법인카드_ 영수증_ 3분기 추가 정"}))
			})
		})
	})
})
