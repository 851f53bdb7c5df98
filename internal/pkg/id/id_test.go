package id

import (
	"sort"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestNew(t *testing.T) {
	Convey("ID 生成", t, func() {
		Convey("生成的ID是合法UUID且互不相同", func() {
			id1 := New()
			id2 := New()
			So(IsValid(id1), ShouldBeTrue)
			So(IsValid(id2), ShouldBeTrue)
			So(id1, ShouldNotEqual, id2)
		})

		Convey("连续生成的ID按生成时间单调可排序", func() {
			ids := make([]string, 100)
			for i := range ids {
				ids[i] = New()
			}
			So(sort.StringsAreSorted(ids), ShouldBeTrue)
		})
	})
}

func TestIsValid(t *testing.T) {
	Convey("UUID 格式校验", t, func() {
		So(IsValid("not-a-uuid"), ShouldBeFalse)
		So(IsValid(""), ShouldBeFalse)
		So(IsValid(New()), ShouldBeTrue)
	})
}
