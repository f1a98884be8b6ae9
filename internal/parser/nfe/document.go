package nfe

import "encoding/xml"

// NFe XML structures. Two root shapes are accepted: the distribution
// process wrapper <nfeProc> (authorized documents) and a bare <NFe>.

type procDocument struct {
	XMLName xml.Name    `xml:"nfeProc"`
	NFe     nfeDocument `xml:"NFe"`
}

type nfeDocument struct {
	XMLName xml.Name `xml:"NFe"`
	InfNFe  infNFe   `xml:"infNFe"`
}

type infNFe struct {
	Ide   ide        `xml:"ide"`
	Emit  emit       `xml:"emit"`
	Det   []det      `xml:"det"`
	Total totalBlock `xml:"total"`
}

type ide struct {
	NNF   string `xml:"nNF"`
	DhEmi string `xml:"dhEmi"`
	DEmi  string `xml:"dEmi"` // layout 2.00 tag, pre-SEFAZ 3.10 documents
}

type emit struct {
	CNPJ  string    `xml:"CNPJ"`
	XNome string    `xml:"xNome"`
	Ender enderEmit `xml:"enderEmit"`
}

type enderEmit struct {
	UF string `xml:"UF"`
}

type det struct {
	Prod    prod    `xml:"prod"`
	Imposto imposto `xml:"imposto"`
}

type prod struct {
	CProd  string `xml:"cProd"`
	XProd  string `xml:"xProd"`
	NCM    string `xml:"NCM"`
	CEST   string `xml:"CEST"`
	CFOP   string `xml:"CFOP"`
	QCom   string `xml:"qCom"`
	VUnCom string `xml:"vUnCom"`
	VProd  string `xml:"vProd"`
}

type imposto struct {
	ICMS   icmsGroup   `xml:"ICMS"`
	IPI    ipiGroup    `xml:"IPI"`
	PIS    pisGroup    `xml:"PIS"`
	COFINS cofinsGroup `xml:"COFINS"`
}

// icmsGroup models the polymorphic ICMS block as an explicit finite set of
// situation-code variants. Exactly one is present in a well-formed document;
// none present is a valid untaxed line and yields zero values.
type icmsGroup struct {
	ICMS00    *icmsValues `xml:"ICMS00"`
	ICMS10    *icmsValues `xml:"ICMS10"`
	ICMS20    *icmsValues `xml:"ICMS20"`
	ICMS30    *icmsValues `xml:"ICMS30"`
	ICMS40    *icmsValues `xml:"ICMS40"`
	ICMS51    *icmsValues `xml:"ICMS51"`
	ICMS60    *icmsValues `xml:"ICMS60"`
	ICMS70    *icmsValues `xml:"ICMS70"`
	ICMS90    *icmsValues `xml:"ICMS90"`
	ICMSSN101 *icmsValues `xml:"ICMSSN101"`
	ICMSSN102 *icmsValues `xml:"ICMSSN102"`
	ICMSSN201 *icmsValues `xml:"ICMSSN201"`
	ICMSSN202 *icmsValues `xml:"ICMSSN202"`
	ICMSSN500 *icmsValues `xml:"ICMSSN500"`
	ICMSSN900 *icmsValues `xml:"ICMSSN900"`
}

type icmsValues struct {
	VICMS   string `xml:"vICMS"`
	VICMSST string `xml:"vICMSST"`
}

func (g icmsGroup) active() *icmsValues {
	for _, v := range []*icmsValues{
		g.ICMS00, g.ICMS10, g.ICMS20, g.ICMS30, g.ICMS40, g.ICMS51,
		g.ICMS60, g.ICMS70, g.ICMS90,
		g.ICMSSN101, g.ICMSSN102, g.ICMSSN201, g.ICMSSN202, g.ICMSSN500, g.ICMSSN900,
	} {
		if v != nil {
			return v
		}
	}
	return nil
}

type ipiGroup struct {
	IPITrib *ipiValues `xml:"IPITrib"`
	IPINT   *ipiValues `xml:"IPINT"`
}

type ipiValues struct {
	VIPI string `xml:"vIPI"`
}

func (g ipiGroup) active() *ipiValues {
	if g.IPITrib != nil {
		return g.IPITrib
	}
	return g.IPINT
}

type pisGroup struct {
	PISAliq *pisValues `xml:"PISAliq"`
	PISQtde *pisValues `xml:"PISQtde"`
	PISNT   *pisValues `xml:"PISNT"`
	PISOutr *pisValues `xml:"PISOutr"`
}

type pisValues struct {
	VPIS string `xml:"vPIS"`
}

func (g pisGroup) active() *pisValues {
	for _, v := range []*pisValues{g.PISAliq, g.PISQtde, g.PISNT, g.PISOutr} {
		if v != nil {
			return v
		}
	}
	return nil
}

type cofinsGroup struct {
	COFINSAliq *cofinsValues `xml:"COFINSAliq"`
	COFINSQtde *cofinsValues `xml:"COFINSQtde"`
	COFINSNT   *cofinsValues `xml:"COFINSNT"`
	COFINSOutr *cofinsValues `xml:"COFINSOutr"`
}

type cofinsValues struct {
	VCOFINS string `xml:"vCOFINS"`
}

func (g cofinsGroup) active() *cofinsValues {
	for _, v := range []*cofinsValues{g.COFINSAliq, g.COFINSQtde, g.COFINSNT, g.COFINSOutr} {
		if v != nil {
			return v
		}
	}
	return nil
}

type totalBlock struct {
	ICMSTot icmsTot `xml:"ICMSTot"`
}

type icmsTot struct {
	VNF    string `xml:"vNF"`
	VICMS  string `xml:"vICMS"`
	VST    string `xml:"vST"`
	VIPI   string `xml:"vIPI"`
	VPIS   string `xml:"vPIS"`
	VCOFINS string `xml:"vCOFINS"`
	VFrete string `xml:"vFrete"`
	VSeg   string `xml:"vSeg"`
	VDesc  string `xml:"vDesc"`
	VOutro string `xml:"vOutro"`
}
