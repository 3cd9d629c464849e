// Copyright (c) 2025 Neomantra Corp

package mbp_test

import (
	"github.com/krakenquant/mbpreplay"
	. "github.com/onsi/ginkgo/v2"
)

var _ = Describe("Visitor", func() {
	Context("interfaces", func() {
		It("NullVisitor should implement mbp.Visitor", func() {
			v := mbp.NullVisitor{}
			var _ mbp.Visitor = &v
		})
	})
})
