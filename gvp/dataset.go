package gvp

// Dataset identifies one of the Volcanoes of the World datasets served by
// the GVP web services.
type Dataset string

const (
	HoloceneVolcanoes    Dataset = "holocene_volcanoes"
	HoloceneEruptions    Dataset = "holocene_eruptions"
	PleistoceneVolcanoes Dataset = "pleistocene_volcanoes"
	PleistoceneEruptions Dataset = "pleistocene_eruptions"
)

// typeNames maps each dataset to its fully-qualified WFS feature type.
var typeNames = map[Dataset]string{
	HoloceneVolcanoes:    "GVP-VOTW:Smithsonian_VOTW_Holocene_Volcanoes",
	HoloceneEruptions:    "GVP-VOTW:Smithsonian_VOTW_Holocene_Eruptions",
	PleistoceneVolcanoes: "GVP-VOTW:Smithsonian_VOTW_Pleistocene_Volcanoes",
	PleistoceneEruptions: "GVP-VOTW:Smithsonian_VOTW_Pleistocene_Eruptions",
}

// Datasets returns every supported dataset in a stable order.
func Datasets() []Dataset {
	return []Dataset{
		HoloceneVolcanoes,
		HoloceneEruptions,
		PleistoceneVolcanoes,
		PleistoceneEruptions,
	}
}

// Valid reports whether the dataset is one of the supported four.
func (d Dataset) Valid() bool {
	_, ok := typeNames[d]
	return ok
}

// TypeName returns the WFS feature type backing the dataset, or "" for an
// unsupported dataset.
func (d Dataset) TypeName() string {
	return typeNames[d]
}

func (d Dataset) String() string {
	return string(d)
}
