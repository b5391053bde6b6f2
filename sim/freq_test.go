package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Freq", func() {
	It("should convert cycles to seconds at 1GHz", func() {
		f := 1 * GHz
		Expect(f.Seconds(1000)).To(BeNumerically("~", 1e-6, 1e-15))
	})

	It("should convert cycles to seconds at 1Hz", func() {
		f := 1 * Hz
		Expect(f.Seconds(10)).To(BeNumerically("==", 10.0))
	})

	It("should report zero seconds for a zero frequency", func() {
		f := Freq(0)
		Expect(f.Seconds(100)).To(BeNumerically("==", 0))
	})
})
