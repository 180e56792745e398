package signature_test

import (
	"fmt"

	"github.com/jonwraymond/codebridge/catalog"
	"github.com/jonwraymond/codebridge/signature"
)

func ExampleFunctionName() {
	fmt.Println(signature.FunctionName(catalog.Key{Provider: "files", Tool: "read"}))
	fmt.Println(signature.FunctionName(catalog.Key{Provider: "my-server", Tool: "read-file"}))
	// Output:
	// read_files
	// read_file_my_server
}

func ExampleSignature_Render() {
	sig := signature.Signature{
		FunctionName:  "echo_local",
		ParameterType: "{text: string}",
		ReturnType:    "{text?: string}",
	}
	fmt.Println(sig.Render())
	// Output:
	// async function echo_local(params: {text: string}): Promise<{text?: string}>
}
