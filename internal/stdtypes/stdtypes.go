// Package stdtypes carries a catalog of common infrastructure type
// definitions that can be preloaded into a type registry. The catalog
// registers before a file parses, so a source file that declares a type
// with the same name simply replaces the catalog entry for that session.
package stdtypes

import (
	"fmt"
	"strings"

	"github.com/vk/ehcl/internal/types"
	"github.com/vk/ehcl/internal/value"
)

// Register loads the catalog into reg. Mixin bases register ahead of the
// types that inherit from them.
func Register(reg *types.Registry) error {
	defs := []*types.TypeDefinition{
		awsTaggable(),
		awsNameable(),
		awsEc2Instance(),
		awsS3Bucket(),
		awsVpc(),
		awsSubnet(),
		awsSecurityGroup(),
		awsRdsInstance(),
		awsLambdaFunction(),
		gcpLabelable(),
		gcpComputeInstance(),
		gcpStorageBucket(),
		azureTaggable(),
		azureVirtualMachine(),
		azureStorageAccount(),
	}
	for _, def := range defs {
		if err := reg.Register(def); err != nil {
			return fmt.Errorf("registering builtin type '%s': %w", def.Name, err)
		}
	}
	return nil
}

func awsTaggable() *types.TypeDefinition {
	return &types.TypeDefinition{
		Name: "AwsTaggable",
		Fields: []types.FieldDefinition{
			describe(withDefault(typed("tags", "map"), objectDefault(func(f *value.Fields) {
				f.Set("ManagedBy", value.StringVal("Terraform"))
			})), "Tags propagated to every resource built from this type."),
		},
	}
}

func awsNameable() *types.TypeDefinition {
	return &types.TypeDefinition{
		Name: "AwsNameable",
		Fields: []types.FieldDefinition{
			typed("name", "string"),
			withDefault(typed("name_prefix", "string"), value.StringVal("")),
		},
	}
}

func awsEc2Instance() *types.TypeDefinition {
	return &types.TypeDefinition{
		Name:     "AwsEc2Instance",
		BaseType: "AwsTaggable",
		Fields: []types.FieldDefinition{
			withDefault(typed("instance_type", "string"), value.StringVal("t2.micro")),
			describe(typed("ami", "string"), "Machine image ID. Required; there is no sensible default."),
			typed("subnet_id", "string?"),
			withDefault(typed("vpc_security_group_ids", "list"), value.ListVal(nil)),
			typed("key_name", "string?"),
			withDefault(typed("associate_public_ip_address", "bool"), value.BoolVal(false)),
			withDefault(typed("root_block_device", "map"), objectDefault(func(f *value.Fields) {
				f.Set("volume_size", value.IntVal(20))
				f.Set("volume_type", value.StringVal("gp2"))
				f.Set("delete_on_termination", value.BoolVal(true))
			})),
		},
	}
}

func awsS3Bucket() *types.TypeDefinition {
	return &types.TypeDefinition{
		Name:     "AwsS3Bucket",
		BaseType: "AwsTaggable",
		Fields: []types.FieldDefinition{
			typed("bucket", "string"),
			withDefault(enum("acl", "private", "public-read", "public-read-write", "authenticated-read"), value.StringVal("private")),
			withDefault(typed("force_destroy", "bool"), value.BoolVal(false)),
			withDefault(typed("versioning", "map"), objectDefault(func(f *value.Fields) {
				f.Set("enabled", value.BoolVal(false))
			})),
		},
	}
}

func awsVpc() *types.TypeDefinition {
	return &types.TypeDefinition{
		Name:     "AwsVpc",
		BaseType: "AwsTaggable",
		Fields: []types.FieldDefinition{
			typed("cidr_block", "string"),
			withDefault(typed("enable_dns_support", "bool"), value.BoolVal(true)),
			withDefault(typed("enable_dns_hostnames", "bool"), value.BoolVal(false)),
			withDefault(enum("instance_tenancy", "default", "dedicated"), value.StringVal("default")),
		},
	}
}

func awsSubnet() *types.TypeDefinition {
	return &types.TypeDefinition{
		Name:     "AwsSubnet",
		BaseType: "AwsTaggable",
		Fields: []types.FieldDefinition{
			typed("vpc_id", "string"),
			typed("cidr_block", "string"),
			typed("availability_zone", "string?"),
			withDefault(typed("map_public_ip_on_launch", "bool"), value.BoolVal(false)),
		},
	}
}

func awsSecurityGroup() *types.TypeDefinition {
	return &types.TypeDefinition{
		Name:     "AwsSecurityGroup",
		BaseType: "AwsTaggable",
		Fields: []types.FieldDefinition{
			typed("name", "string"),
			withDefault(typed("description", "string"), value.StringVal("Managed by Terraform")),
			typed("vpc_id", "string?"),
			withDefault(typed("ingress", "list"), value.ListVal(nil)),
			withDefault(typed("egress", "list"), value.ListVal(nil)),
		},
	}
}

func awsRdsInstance() *types.TypeDefinition {
	return &types.TypeDefinition{
		Name:     "AwsRdsInstance",
		BaseType: "AwsTaggable",
		Fields: []types.FieldDefinition{
			enum("engine", "mysql", "postgres", "mariadb", "oracle-ee", "sqlserver-ex"),
			typed("engine_version", "string?"),
			withDefault(typed("instance_class", "string"), value.StringVal("db.t3.micro")),
			withDefault(typed("allocated_storage", "number"), value.IntVal(20)),
			withDefault(enum("storage_type", "gp2", "gp3", "io1"), value.StringVal("gp2")),
			typed("username", "string?"),
			withDefault(typed("multi_az", "bool"), value.BoolVal(false)),
			withDefault(typed("skip_final_snapshot", "bool"), value.BoolVal(true)),
		},
	}
}

func awsLambdaFunction() *types.TypeDefinition {
	return &types.TypeDefinition{
		Name:     "AwsLambdaFunction",
		BaseType: "AwsTaggable",
		Fields: []types.FieldDefinition{
			typed("function_name", "string"),
			withDefault(typed("runtime", "string"), value.StringVal("nodejs18.x")),
			withDefault(typed("handler", "string"), value.StringVal("index.handler")),
			withDefault(typed("memory_size", "number"), value.IntVal(128)),
			withDefault(typed("timeout", "number"), value.IntVal(3)),
			describe(typed("role", "string"), "ARN of the execution role."),
		},
	}
}

func gcpLabelable() *types.TypeDefinition {
	return &types.TypeDefinition{
		Name: "GcpLabelable",
		Fields: []types.FieldDefinition{
			withDefault(typed("labels", "map"), objectDefault(func(f *value.Fields) {
				f.Set("managed_by", value.StringVal("terraform"))
			})),
		},
	}
}

func gcpComputeInstance() *types.TypeDefinition {
	return &types.TypeDefinition{
		Name:     "GcpComputeInstance",
		BaseType: "GcpLabelable",
		Fields: []types.FieldDefinition{
			withDefault(typed("machine_type", "string"), value.StringVal("e2-micro")),
			typed("zone", "string"),
			withDefault(typed("image", "string"), value.StringVal("debian-cloud/debian-12")),
			withDefault(typed("network", "string"), value.StringVal("default")),
		},
	}
}

func gcpStorageBucket() *types.TypeDefinition {
	return &types.TypeDefinition{
		Name:     "GcpStorageBucket",
		BaseType: "GcpLabelable",
		Fields: []types.FieldDefinition{
			typed("name", "string"),
			withDefault(typed("location", "string"), value.StringVal("US")),
			withDefault(enum("storage_class", "STANDARD", "NEARLINE", "COLDLINE", "ARCHIVE"), value.StringVal("STANDARD")),
			withDefault(typed("uniform_bucket_level_access", "bool"), value.BoolVal(true)),
		},
	}
}

func azureTaggable() *types.TypeDefinition {
	return &types.TypeDefinition{
		Name: "AzureTaggable",
		Fields: []types.FieldDefinition{
			withDefault(typed("tags", "map"), objectDefault(func(f *value.Fields) {
				f.Set("managed_by", value.StringVal("terraform"))
			})),
		},
	}
}

func azureVirtualMachine() *types.TypeDefinition {
	return &types.TypeDefinition{
		Name:     "AzureVirtualMachine",
		BaseType: "AzureTaggable",
		Fields: []types.FieldDefinition{
			withDefault(typed("vm_size", "string"), value.StringVal("Standard_B1s")),
			typed("location", "string"),
			typed("resource_group_name", "string"),
			withDefault(typed("admin_username", "string"), value.StringVal("azureuser")),
		},
	}
}

func azureStorageAccount() *types.TypeDefinition {
	return &types.TypeDefinition{
		Name:     "AzureStorageAccount",
		BaseType: "AzureTaggable",
		Fields: []types.FieldDefinition{
			typed("name", "string"),
			typed("resource_group_name", "string"),
			typed("location", "string"),
			withDefault(enum("account_tier", "Standard", "Premium"), value.StringVal("Standard")),
			withDefault(typed("account_replication_type", "string"), value.StringVal("LRS")),
		},
	}
}

// typed builds a field constrained to the named type; a trailing "?"
// marks it nullable.
func typed(name, typeName string) types.FieldDefinition {
	nullable := strings.HasSuffix(typeName, "?")
	base := strings.TrimSuffix(typeName, "?")
	return types.FieldDefinition{
		Name:       name,
		Constraint: types.TypeConstraint{Type: types.CustomType{Name: base, Nullable: nullable}, Nullable: nullable},
	}
}

// enum builds a string field restricted to the allowed values.
func enum(name string, allowed ...string) types.FieldDefinition {
	return types.FieldDefinition{
		Name:       name,
		Constraint: types.TypeConstraint{Type: types.CustomType{Name: "string"}, OneOf: allowed},
	}
}

func withDefault(f types.FieldDefinition, v value.Value) types.FieldDefinition {
	f.Default = &v
	return f
}

func describe(f types.FieldDefinition, desc string) types.FieldDefinition {
	f.Description = desc
	return f
}

func objectDefault(set func(*value.Fields)) value.Value {
	fields := value.NewFields()
	set(fields)
	return value.ObjectVal(fields)
}
