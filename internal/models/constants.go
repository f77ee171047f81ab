package models

const (
	NodeWineryMosel    = "Winery_Mosel"
	NodeWineryRheingau = "Winery_Rheingau"
	NodeWholesaler     = "Wholesaler"
	NodeRetailer       = "Retailer"

	CustomerIDPrefix = "Customer_"

	MinDemand = 1
	MaxDemand = 12

	DefaultRetailerLocation       = "Gelsenkirchen"
	DefaultWholesalerLocation     = "Düsseldorf"
	DefaultWineryMoselLocation    = "Bernkastel-Kues"
	DefaultWineryRheingauLocation = "Rüdesheim am Rhein"
	DefaultCountry                = "Deutschland"
	DefaultMapOutputFile          = "liefernetz_karte.html"

	TopicNodes = "supply_network_nodes"
	TopicEdges = "supply_network_edges"
)

// DefaultCities is the reference list customer home cities are drawn from.
var DefaultCities = []string{
	"Berlin", "Hamburg", "München", "Köln", "Frankfurt am Main", "Stuttgart",
	"Düsseldorf", "Dortmund", "Essen", "Leipzig", "Bremen", "Dresden",
	"Hannover", "Nürnberg", "Duisburg", "Bochum", "Wuppertal", "Bielefeld",
	"Bonn", "Münster", "Karlsruhe", "Mannheim", "Augsburg", "Wiesbaden",
	"Gelsenkirchen", "Mönchengladbach", "Braunschweig", "Chemnitz", "Kiel",
	"Aachen", "Halle (Saale)", "Magdeburg", "Freiburg im Breisgau", "Krefeld",
	"Lübeck", "Oberhausen", "Erfurt", "Mainz", "Rostock", "Kassel",
	"Hagen", "Hamm", "Saarbrücken", "Mülheim an der Ruhr", "Potsdam",
	"Ludwigshafen am Rhein", "Oldenburg", "Leverkusen", "Osnabrück", "Solingen",
	"Heidelberg", "Herne", "Neuss", "Darmstadt", "Paderborn", "Regensburg",
	"Ingolstadt", "Würzburg", "Fürth", "Wolfsburg", "Ulm", "Offenbach am Main",
	"Heilbronn", "Pforzheim", "Göttingen", "Bottrop", "Trier", "Recklinghausen",
	"Reutlingen", "Bremerhaven", "Koblenz", "Bergisch Gladbach", "Jena",
	"Remscheid", "Erlangen", "Moers", "Siegen", "Hildesheim", "Salzgitter",
}
