package assembler

import (
	"reflect"
	"testing"

	"github.com/address-cleanser/app/models"
	"github.com/address-cleanser/internal/tagger"
)

func tok(text string, tag tagger.Tag) tagger.Token {
	return tagger.Token{Text: text, Tag: tag, Confidence: 0.9}
}

func TestAssembleStreetAddress(t *testing.T) {
	a := New()

	pa := a.Assemble("123 Main Street, Austin, TX 78701", []tagger.Token{
		tok("123", tagger.TagAddressNumber),
		tok("Main", tagger.TagStreetName),
		tok("Street", tagger.TagStreetNamePostType),
		tok("Austin", tagger.TagPlaceName),
		tok("TX", tagger.TagStateName),
		tok("78701", tagger.TagZipCode),
	})

	if pa.AddressNumber != "123" || pa.StreetName != "Main" || pa.StreetType != "Street" {
		t.Errorf("street line = %q %q %q", pa.AddressNumber, pa.StreetName, pa.StreetType)
	}
	if pa.City != "Austin" || pa.State != "TX" || pa.Zip5 != "78701" {
		t.Errorf("locality = %q %q %q", pa.City, pa.State, pa.Zip5)
	}
	if pa.AddressType != models.AddressTypeStreet {
		t.Errorf("type = %s, want %s", pa.AddressType, models.AddressTypeStreet)
	}
	if len(pa.UnclassifiedTokens) != 0 {
		t.Errorf("unexpected unclassified tokens %v", pa.UnclassifiedTokens)
	}
}

func TestAssembleMultiWordRuns(t *testing.T) {
	a := New()

	pa := a.Assemble("742 Martin Luther King Jr Blvd, New Orleans, LA 70113", []tagger.Token{
		tok("742", tagger.TagAddressNumber),
		tok("Martin", tagger.TagStreetName),
		tok("Luther", tagger.TagStreetName),
		tok("King", tagger.TagStreetName),
		tok("Jr", tagger.TagStreetName),
		tok("Blvd", tagger.TagStreetNamePostType),
		tok("New", tagger.TagPlaceName),
		tok("Orleans", tagger.TagPlaceName),
		tok("LA", tagger.TagStateName),
		tok("70113", tagger.TagZipCode),
	})

	if pa.StreetName != "Martin Luther King Jr" {
		t.Errorf("street name = %q", pa.StreetName)
	}
	if pa.City != "New Orleans" {
		t.Errorf("city = %q", pa.City)
	}
}

func TestAssembleFirstRunWins(t *testing.T) {
	a := New()

	pa := a.Assemble("100 Elm St Springfield Shelbyville IL 62701", []tagger.Token{
		tok("100", tagger.TagAddressNumber),
		tok("Elm", tagger.TagStreetName),
		tok("St", tagger.TagStreetNamePostType),
		tok("Springfield", tagger.TagPlaceName),
		tok("IL", tagger.TagStateName),
		tok("Shelbyville", tagger.TagPlaceName),
		tok("62701", tagger.TagZipCode),
	})

	if pa.City != "Springfield" {
		t.Errorf("city = %q, want first run to win", pa.City)
	}
	if !reflect.DeepEqual(pa.UnclassifiedTokens, []string{"Shelbyville"}) {
		t.Errorf("unclassified = %v, want [Shelbyville]", pa.UnclassifiedTokens)
	}
}

func TestAssemblePOBox(t *testing.T) {
	a := New()

	pa := a.Assemble("PO BOX 123, Austin, TX 78701", []tagger.Token{
		tok("PO", tagger.TagUSPSBoxType),
		tok("BOX", tagger.TagUSPSBoxType),
		tok("123", tagger.TagUSPSBoxID),
		tok("Austin", tagger.TagPlaceName),
		tok("TX", tagger.TagStateName),
		tok("78701", tagger.TagZipCode),
	})

	if pa.POBoxType != "PO BOX" || pa.POBoxNumber != "123" {
		t.Errorf("box = %q %q", pa.POBoxType, pa.POBoxNumber)
	}
	if pa.AddressType != models.AddressTypePOBox {
		t.Errorf("type = %s, want %s", pa.AddressType, models.AddressTypePOBox)
	}
}

func TestAssembleUnitAndZipPlus4(t *testing.T) {
	a := New()

	pa := a.Assemble("456 Oak Ave Apt 2B, Denver, CO 80202-1234", []tagger.Token{
		tok("456", tagger.TagAddressNumber),
		tok("Oak", tagger.TagStreetName),
		tok("Ave", tagger.TagStreetNamePostType),
		tok("Apt", tagger.TagOccupancyType),
		tok("2B", tagger.TagOccupancyIdentifier),
		tok("Denver", tagger.TagPlaceName),
		tok("CO", tagger.TagStateName),
		tok("80202-1234", tagger.TagZipCode),
	})

	if pa.UnitType != "Apt" || pa.UnitNumber != "2B" {
		t.Errorf("unit = %q %q", pa.UnitType, pa.UnitNumber)
	}
	if pa.Zip5 != "80202" || pa.Zip4 != "1234" {
		t.Errorf("zip = %q %q", pa.Zip5, pa.Zip4)
	}
	if pa.AddressType != models.AddressTypeUnit {
		t.Errorf("type = %s, want %s", pa.AddressType, models.AddressTypeUnit)
	}
}

func TestAssembleHashUnitPrefix(t *testing.T) {
	a := New()

	pa := a.Assemble("789 Pine St #12", []tagger.Token{
		tok("789", tagger.TagAddressNumber),
		tok("Pine", tagger.TagStreetName),
		tok("St", tagger.TagStreetNamePostType),
		tok("#12", tagger.TagOccupancyIdentifier),
	})

	if pa.UnitNumber != "12" {
		t.Errorf("unit number = %q, want hash stripped", pa.UnitNumber)
	}
}

func TestAssembleUnknownTagsRouted(t *testing.T) {
	a := New()

	pa := a.Assemble("floor three somewhere", []tagger.Token{
		tok("floor", tagger.Tag("FutureTag")),
		tok("three", tagger.Tag("FutureTag")),
		tok("somewhere", tagger.TagOther),
	})

	if !reflect.DeepEqual(pa.UnclassifiedTokens, []string{"floor", "three", "somewhere"}) {
		t.Errorf("unclassified = %v", pa.UnclassifiedTokens)
	}
	if pa.AddressType != models.AddressTypeUnknown {
		t.Errorf("type = %s, want %s", pa.AddressType, models.AddressTypeUnknown)
	}
}

func TestAssembleEmptyTokens(t *testing.T) {
	a := New()

	pa := a.Assemble("", nil)
	if pa.AddressType != models.AddressTypeUnknown {
		t.Errorf("type = %s, want %s", pa.AddressType, models.AddressTypeUnknown)
	}
}
